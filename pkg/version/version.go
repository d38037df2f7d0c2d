// Package version exposes the kubesnap build version, set by the
// release build's -ldflags, and the derived user agent string the
// collector identifies itself with to the Kubernetes API.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the kubesnap version, set via -ldflags at build time.
var Version string

// GetUserAgent returns a user agent of the format: kubesnap/<version>
// (<goos>/<goarch>) <vcsrevision><-vcsdirty>/<vcstimestamp>.
func GetUserAgent() string {
	vcsrevision := "unknown"
	vcstimestamp := "unknown"
	vcsdirty := ""

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, v := range info.Settings {
			switch v.Key {
			case "vcs.revision":
				vcsrevision = v.Value
			case "vcs.modified":
				if v.Value == "true" {
					vcsdirty = "-dirty"
				}
			case "vcs.time":
				vcstimestamp = v.Value
			}
		}
	}

	return fmt.Sprintf("kubesnap/%s (%s/%s) %s%s/%s", Version, runtime.GOOS, runtime.GOARCH, vcsrevision, vcsdirty, vcstimestamp)
}

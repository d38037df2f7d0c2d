// Package archivepath derives the deterministic, archive-relative paths
// that identify objects, object lists, and logs inside a snapshot
// archive. See ArchivePath for the six path shapes.
package archivepath

import (
	"strings"

	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
)

// Kind distinguishes the six ArchivePath shapes.
type Kind int

const (
	// Cluster identifies a single cluster-scoped object.
	Cluster Kind = iota
	// Namespaced identifies a single namespaced object.
	Namespaced
	// ClusterList is a glob over all cluster-scoped objects of a GVK.
	ClusterList
	// NamespacedList is a glob over all namespaced objects of a GVK
	// within one namespace.
	NamespacedList
	// Logs identifies a single log file derived from an object path.
	Logs
	// Custom is an arbitrary relative path, used for discovery metadata.
	Custom
)

// ArchivePath is the value-typed, tagged-union path of an archive member.
// The zero value is not meaningful; build one with the New* constructors.
type ArchivePath struct {
	kind Kind
	path string
}

// Kind reports which of the six shapes this path is.
func (p ArchivePath) Kind() Kind { return p.kind }

// IsGlob reports whether this path identifies a set of members (the two
// List variants) rather than exactly one.
func (p ArchivePath) IsGlob() bool {
	return p.kind == ClusterList || p.kind == NamespacedList
}

// forbiddenChars are replaced by '-' exactly once, at the string
// boundary, to keep archive member names GitHub-artifact compatible.
const forbiddenChars = ":*?|"

func sanitize(s string) string {
	if !strings.ContainsAny(s, forbiddenChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(forbiddenChars, r) {
			b.WriteByte('-')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String renders the archive-relative, Unix-separated, sanitised path.
func (p ArchivePath) String() string {
	return sanitize(p.path)
}

// NewObjectPath derives the canonical path for a single object identified
// by id and g. Returns Namespaced when id carries a namespace, Cluster
// otherwise.
func NewObjectPath(g gvk.GVK, id nsname.NamespaceName) ArchivePath {
	file := g.KindSegment() + "/" + id.Name + ".yaml"
	if id.Clustered() {
		return ArchivePath{kind: Cluster, path: "cluster/" + g.PathSegment() + "/" + file}
	}
	return ArchivePath{
		kind: Namespaced,
		path: "namespaces/" + id.Namespace + "/" + g.PathSegment() + "/" + file,
	}
}

// NewListPath derives the glob matching every object of GVK g, optionally
// scoped to one namespace. An empty namespace yields a ClusterList glob
// over every namespace and the cluster scope combined, mirroring the
// source's "**/{api-version}/{kind}/*.yaml" shape.
func NewListPath(g gvk.GVK, namespace string) ArchivePath {
	if namespace == "" {
		return ArchivePath{
			kind: ClusterList,
			path: "**/" + g.PathSegment() + "/" + g.KindSegment() + "/*.yaml",
		}
	}
	return ArchivePath{
		kind: NamespacedList,
		path: "namespaces/" + namespace + "/" + g.PathSegment() + "/" + g.KindSegment() + "/*.yaml",
	}
}

// NewLogPath derives the log path for group, relative to the .yaml object
// path obj identifies. obj must be a Cluster or Namespaced path produced
// by NewObjectPath.
func NewLogPath(obj ArchivePath, group LogGroup) ArchivePath {
	base := strings.TrimSuffix(obj.path, ".yaml")
	return ArchivePath{kind: Logs, path: base + "/" + group.filename()}
}

// NewCustomPath wraps an arbitrary archive-relative path, used for
// discovery metadata and the fixed-path collectors (version.yaml,
// event-filter.html, ...).
func NewCustomPath(relative string) ArchivePath {
	return ArchivePath{kind: Custom, path: relative}
}

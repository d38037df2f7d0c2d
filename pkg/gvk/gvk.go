// Package gvk carries the Group/Version/Kind identity used as both a
// filter key and an archive path segment throughout kubesnap.
package gvk

import "strings"

// GVK identifies a Kubernetes API resource kind. Group is empty for core
// resources.
type GVK struct {
	Group   string
	Version string
	Kind    string
}

// APIVersion returns the conventional "group/version" string, or just
// "version" for the core group.
func (g GVK) APIVersion() string {
	if g.Group == "" {
		return g.Version
	}
	return g.Group + "/" + g.Version
}

// PathSegment returns the lowercased, slash-free form of APIVersion used
// as an archive directory segment, e.g. "apps-v1" for "apps/v1".
func (g GVK) PathSegment() string {
	return strings.ToLower(strings.ReplaceAll(g.APIVersion(), "/", "-"))
}

// KindSegment returns the lowercased kind used as an archive directory
// segment, e.g. "pod" for "Pod".
func (g GVK) KindSegment() string {
	return strings.ToLower(g.Kind)
}

func (g GVK) String() string {
	if g.Group == "" {
		return g.Version + ", Kind=" + g.Kind
	}
	return g.Group + "/" + g.Version + ", Kind=" + g.Kind
}

// Package filter implements the include/exclude lattice used to prune
// API discovery and individual objects before collection.
package filter

import (
	"fmt"
	"regexp"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/gvk"
)

// class identifies which axis of an object/GVK an Expression evaluates.
type class int

const (
	classNamespace class = iota
	classKind
	classGroup
)

// Expression is a single compiled include or exclude filter. Build one
// with NewNamespace, NewKind, or NewGroup; the zero value is invalid.
type Expression struct {
	class   class
	exclude bool
	ns      *regexp.Regexp
	kind    *regexp.Regexp
	group   *regexp.Regexp
}

// NewNamespace compiles a namespace filter. pattern is matched against
// the object's namespace; exclude negates the match.
func NewNamespace(pattern string, exclude bool) (Expression, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: namespace pattern %q: %v", apierrors.ErrConfig, pattern, err)
	}
	return Expression{class: classNamespace, exclude: exclude, ns: re}, nil
}

// NewKind compiles a kind filter, matched against gvk.Kind.
func NewKind(pattern string, exclude bool) (Expression, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: kind pattern %q: %v", apierrors.ErrConfig, pattern, err)
	}
	return Expression{class: classKind, exclude: exclude, kind: re}, nil
}

// NewGroup compiles a group filter from a "<group>/<kind>" spec. An
// empty group slot anchors to "^$" (core group); a missing kind slot
// becomes ".*"; a bare "apps" is group-only ("apps" + ".*").
func NewGroup(spec string, exclude bool) (Expression, error) {
	groupPat, kindPat := splitGroupSpec(spec)

	groupRe, err := regexp.Compile(groupPat)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: group pattern %q: %v", apierrors.ErrConfig, groupPat, err)
	}
	kindRe, err := regexp.Compile(kindPat)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: group-filter kind pattern %q: %v", apierrors.ErrConfig, kindPat, err)
	}
	return Expression{class: classGroup, exclude: exclude, group: groupRe, kind: kindRe}, nil
}

// splitGroupSpec parses "<group>/<kind>" into its two regex source
// strings, per the group filter grammar.
func splitGroupSpec(spec string) (groupPat, kindPat string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '/' {
			groupPat, kindPat = spec[:i], spec[i+1:]
			if groupPat == "" {
				groupPat = "^$"
			}
			if kindPat == "" {
				kindPat = ".*"
			}
			return groupPat, kindPat
		}
	}
	if spec == "" {
		return "^$", ".*"
	}
	return spec, ".*"
}

// Exclude reports whether this expression belongs to the EXCLUDES
// partition rather than INCLUDES.
func (e Expression) Exclude() bool { return e.exclude }

// appliesToAPI reports whether this expression is relevant when
// evaluating accept_api(gvk): Kind and Group filters are API-level,
// Namespace filters are object-level only.
func (e Expression) appliesToAPI() bool {
	return e.class == classKind || e.class == classGroup
}

// appliesToObject reports whether this expression is relevant when
// evaluating accept_object(gvk, obj).
func (e Expression) appliesToObject() bool {
	return e.class == classNamespace
}

// allowAPI evaluates this expression against a bare GVK, for filters
// relevant to the API axis. Filters irrelevant to this axis return the
// neutral element for their side of the partition.
func (e Expression) allowAPI(g gvk.GVK) bool {
	switch e.class {
	case classKind:
		match := e.kind.MatchString(g.Kind)
		if e.exclude {
			return !match
		}
		return match
	case classGroup:
		match := e.group.MatchString(g.Group) && e.kind.MatchString(g.Kind)
		if e.exclude {
			return !match
		}
		return match
	default:
		// Neutral element: true keeps a no-op out of the EXCLUDES
		// conjunction, false keeps it out of the INCLUDES disjunction.
		return e.exclude
	}
}

// allowObject evaluates this expression against namespace, for filters
// relevant to the object axis. namespace is empty for cluster-scoped
// objects, which namespace filters always allow.
func (e Expression) allowObject(namespace string) bool {
	switch e.class {
	case classNamespace:
		if namespace == "" {
			return true
		}
		match := e.ns.MatchString(namespace)
		if e.exclude {
			return !match
		}
		return match
	default:
		return e.exclude
	}
}

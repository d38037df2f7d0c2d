package filter

import (
	"sync"

	"github.com/crust-gather/kubesnap/pkg/gvk"
)

// Set evaluates the two-predicate filter lattice implemented here:
// AcceptAPI prunes discovery, AcceptObject rejects individual objects.
// A Set is safe for concurrent read access once built; Add takes a
// write lock so filters may be appended while an Orchestrator run is
// already reading it for earlier GVKs.
type Set struct {
	mu    sync.RWMutex
	exprs []Expression
}

// New builds a Set from exprs. A nil or empty exprs yields a Set that
// accepts everything (empty includes vacuously accept, no excludes to
// fail).
func New(exprs ...Expression) *Set {
	return &Set{exprs: append([]Expression(nil), exprs...)}
}

// Add appends additional filter expressions to the set.
func (s *Set) Add(exprs ...Expression) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exprs = append(s.exprs, exprs...)
}

// AcceptAPI reports whether g should be listed at all, evaluating only
// Kind and Group filters.
func (s *Set) AcceptAPI(g gvk.GVK) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	noExclude, someInclude, haveInclude := true, false, false
	for _, e := range s.exprs {
		if !e.appliesToAPI() {
			continue
		}
		if e.Exclude() {
			if !e.allowAPI(g) {
				noExclude = false
			}
			continue
		}
		haveInclude = true
		if e.allowAPI(g) {
			someInclude = true
		}
	}
	return noExclude && (!haveInclude || someInclude)
}

// AcceptObject reports whether obj's namespace should be collected,
// given it already passed AcceptAPI. namespace is empty for
// cluster-scoped objects.
func (s *Set) AcceptObject(namespace string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	noExclude, someInclude, haveInclude := true, false, false
	for _, e := range s.exprs {
		if !e.appliesToObject() {
			continue
		}
		if e.Exclude() {
			if !e.allowObject(namespace) {
				noExclude = false
			}
			continue
		}
		haveInclude = true
		if e.allowObject(namespace) {
			someInclude = true
		}
	}
	return noExclude && (!haveInclude || someInclude)
}

// Accept is the conjunction accept_api ∧ accept_object, the Set's
// public contract.
func (s *Set) Accept(g gvk.GVK, namespace string) bool {
	return s.AcceptAPI(g) && s.AcceptObject(namespace)
}

// Package selector implements the Kubernetes label-selector grammar: a
// comma-separated conjunction of equality, set, and presence
// expressions evaluated against an object's labels.
package selector

import (
	"fmt"
	"strings"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/selector/parser"
)

// Selector is a parsed, reusable label selector. Build one with Parse.
type Selector struct {
	atoms []parser.Atom
}

// Parse compiles selectorString into a Selector. An empty string parses
// to a Selector that Matches everything, the vacuous-true case.
func Parse(selectorString string) (Selector, error) {
	exprs := splitTopLevel(selectorString)
	atoms := make([]parser.Atom, 0, len(exprs))
	for _, expr := range exprs {
		trimmed := strings.TrimSpace(expr)
		if trimmed == "" {
			continue
		}
		atom, err := parser.New(trimmed).Parse()
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %v", apierrors.ErrParse, err)
		}
		atoms = append(atoms, atom)
	}
	return Selector{atoms: atoms}, nil
}

// splitTopLevel splits s on commas that are not nested inside a
// set expression's parentheses, e.g. "a in (x,y),b=c" yields
// ["a in (x,y)", "b=c"]. This is the top-level tokeniser this package implements
// recognising complete expressions as units.
func splitTopLevel(s string) []string {
	var exprs []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				exprs = append(exprs, s[start:i])
				start = i + 1
			}
		}
	}
	exprs = append(exprs, s[start:])
	return exprs
}

// Matches reports whether labels satisfies every atom of s (conjunction).
func (s Selector) Matches(labels map[string]string) bool {
	for _, a := range s.atoms {
		if !a.Matches(labels) {
			return false
		}
	}
	return true
}

// Matches is the package-level convenience form of the selector's public
// contract: matches(selector_string, labels) -> bool. An unparsable
// selectorString returns false; use Parse directly to surface the error.
func Matches(selectorString string, labels map[string]string) bool {
	sel, err := Parse(selectorString)
	if err != nil {
		return false
	}
	return sel.Matches(labels)
}

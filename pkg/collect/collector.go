// Package collect implements the six concrete collectors: generic
// objects, pod logs, events, node journals, versions, and discovery
// info. Each is a tagged variant behind the single Collector interface
// rather than a class hierarchy.
package collect

import (
	"context"

	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// Collector drives one logical collection unit to completion: list its
// objects, filter them, derive representations, and store every one.
// Implementations own their own list/filter/representations split
// internally; Collect is the Orchestrator's single dispatch site.
type Collector interface {
	Collect(ctx context.Context) error
}

// storeAll writes every representation r produces to w, stopping at
// the first write failure (fatal by convention).
func storeAll(w *writer.Writer, reprs []representation.Representation) error {
	for _, r := range reprs {
		if err := w.Store(r); err != nil {
			return err
		}
	}
	return nil
}

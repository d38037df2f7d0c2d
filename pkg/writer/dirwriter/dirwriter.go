// Package dirwriter implements the plain-directory Writer backend:
// each representation becomes a file under a base directory, with
// parent directories created eagerly. Grounded on the disk export
// driver's MkdirAll-then-write pattern.
package dirwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

// Backend writes representations as files under Base.
type Backend struct {
	Base string
}

// New returns a Backend rooted at base. base is created if absent.
func New(base string) (*Backend, error) {
	if err := os.MkdirAll(base, 0o777); err != nil {
		return nil, fmt.Errorf("%w: creating archive directory %q: %v", apierrors.ErrWrite, base, err)
	}
	return &Backend{Base: base}, nil
}

// Write creates repr's parent directories under Base and writes its
// bytes to the resulting file path.
func (b *Backend) Write(repr representation.Representation) error {
	full := filepath.Join(b.Base, filepath.FromSlash(repr.Path.String()))
	if err := os.MkdirAll(filepath.Dir(full), 0o777); err != nil {
		return fmt.Errorf("%w: creating directory for %q: %v", apierrors.ErrWrite, full, err)
	}
	if err := os.WriteFile(full, repr.Data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %q: %v", apierrors.ErrWrite, full, err)
	}
	return nil
}

// Finish is a no-op: every Write already landed on disk.
func (b *Backend) Finish() error { return nil }

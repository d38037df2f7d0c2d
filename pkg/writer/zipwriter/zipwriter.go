// Package zipwriter implements the zip Writer backend: a directory
// entry per representation's parent path, written idempotently, then a
// file entry at the representation's own path.
package zipwriter

import (
	"archive/zip"
	"fmt"
	"io"
	"path"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

// Backend writes representations into a zip archive.
type Backend struct {
	zw   *zip.Writer
	dirs map[string]bool
}

// New wraps w with a zip writer.
func New(w io.Writer) *Backend {
	return &Backend{zw: zip.NewWriter(w), dirs: make(map[string]bool)}
}

// Write creates (idempotently) a directory entry for repr's parent,
// then a file entry at repr's own path. A path with no parent segment
// (path.Dir returns ".") needs no directory entry: the object is
// readable back without one.
func (b *Backend) Write(repr representation.Representation) error {
	p := repr.Path.String()
	dir := path.Dir(p)
	if dir != "." && dir != "/" {
		if err := b.writeDir(dir); err != nil {
			return err
		}
	}

	fw, err := b.zw.Create(p)
	if err != nil {
		return fmt.Errorf("%w: zip entry for %q: %v", apierrors.ErrWrite, p, err)
	}
	if _, err := fw.Write(repr.Data); err != nil {
		return fmt.Errorf("%w: zip body for %q: %v", apierrors.ErrWrite, p, err)
	}
	return nil
}

// writeDir writes a directory entry for dir and every undone ancestor,
// skipping ones already written.
func (b *Backend) writeDir(dir string) error {
	if b.dirs[dir] {
		return nil
	}
	parent := path.Dir(dir)
	if parent != "." && parent != "/" {
		if err := b.writeDir(parent); err != nil {
			return err
		}
	}
	if _, err := b.zw.Create(dir + "/"); err != nil {
		return fmt.Errorf("%w: zip directory entry for %q: %v", apierrors.ErrWrite, dir, err)
	}
	b.dirs[dir] = true
	return nil
}

// Finish closes the underlying zip writer, flushing its central
// directory.
func (b *Backend) Finish() error {
	if err := b.zw.Close(); err != nil {
		return fmt.Errorf("%w: closing zip writer: %v", apierrors.ErrWrite, err)
	}
	return nil
}

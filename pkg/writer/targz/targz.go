// Package targz implements the tar+gzip Writer backend: each
// representation becomes a ustar entry, mode 0644, inside a gzip stream.
package targz

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

// Backend streams representations into a tar archive wrapped in gzip.
type Backend struct {
	gz  *gzip.Writer
	tw  *tar.Writer
}

// New wraps w (typically an *os.File) with a gzip and tar writer pair.
func New(w io.Writer) *Backend {
	gz := gzip.NewWriter(w)
	return &Backend{gz: gz, tw: tar.NewWriter(gz)}
}

// Write appends repr as a regular-file ustar entry.
func (b *Backend) Write(repr representation.Representation) error {
	hdr := &tar.Header{
		Name:     repr.Path.String(),
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(repr.Data)),
	}
	if err := b.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%w: tar header for %q: %v", apierrors.ErrWrite, hdr.Name, err)
	}
	if _, err := b.tw.Write(repr.Data); err != nil {
		return fmt.Errorf("%w: tar body for %q: %v", apierrors.ErrWrite, hdr.Name, err)
	}
	return nil
}

// Finish closes the tar writer then the gzip stream, in that order.
func (b *Backend) Finish() error {
	if err := b.tw.Close(); err != nil {
		return fmt.Errorf("%w: closing tar writer: %v", apierrors.ErrWrite, err)
	}
	if err := b.gz.Close(); err != nil {
		return fmt.Errorf("%w: closing gzip stream: %v", apierrors.ErrWrite, err)
	}
	return nil
}

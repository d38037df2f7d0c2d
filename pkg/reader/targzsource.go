package reader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
)

// newTarGzSource reads every entry of the tar+gzip archive at path into
// memory. Snapshot archives are collector output, not unbounded user
// data, so eager materialisation matches the Writer side's own
// single-pass streaming model.
func newTarGzSource(path string) (*memSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", apierrors.ErrWrite, path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip header in %q: %v", apierrors.ErrWrite, path, err)
	}
	defer gz.Close()

	src := newMemSource()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading tar entry in %q: %v", apierrors.ErrWrite, path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: reading tar body %q: %v", apierrors.ErrWrite, hdr.Name, err)
		}
		src.add(hdr.Name, data)
	}
	return src, nil
}

package reader

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
)

// newZipSource reads every file entry of the zip archive at path into
// memory, skipping the directory entries the zip backend writes.
func newZipSource(path string) (*memSource, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", apierrors.ErrWrite, path, err)
	}
	defer zr.Close()

	src := newMemSource()
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening zip entry %q: %v", apierrors.ErrWrite, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading zip entry %q: %v", apierrors.ErrWrite, f.Name, err)
		}
		src.add(f.Name, data)
	}
	return src, nil
}

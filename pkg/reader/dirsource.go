package reader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
)

// dirSource reads archive members directly off disk, rooted at base.
// Grounded on the plain-directory Writer backend it mirrors.
type dirSource struct {
	base string
	fsys fs.FS
}

func newDirSource(base string) *dirSource {
	return &dirSource{base: base, fsys: os.DirFS(base)}
}

func (d *dirSource) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(d.fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q under %q: %v", apierrors.ErrPath, pattern, d.base, err)
	}
	return matches, nil
}

func (d *dirSource) Get(path string) ([]byte, error) {
	full := filepath.Join(d.base, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %q: %v", apierrors.ErrWrite, full, err)
	}
	return data, nil
}

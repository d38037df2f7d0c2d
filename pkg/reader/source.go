// Package reader implements the inverse of writer: given an archive
// produced by one of the four Writer backends, enumerate and fetch its
// members, and project object lists into the List/Table JSON shapes
// the replay server serves.
package reader

import "github.com/crust-gather/kubesnap/pkg/apierrors"

// Source is the per-backend enumeration/fetch primitive Reader builds
// on. Glob returns every archive-relative path matching pattern
// (doublestar syntax, so "**/v1/pod/*.yaml" works); an empty match is
// not an error. Get returns apierrors.ErrNotFound when path is absent.
type Source interface {
	Glob(pattern string) ([]string, error)
	Get(path string) ([]byte, error)
}

// memSource is a fully materialised, in-memory archive index, used by
// the tar+gzip and zip backends, which are cheap to read in full.
type memSource struct {
	files map[string][]byte
}

func newMemSource() *memSource {
	return &memSource{files: make(map[string][]byte)}
}

func (m *memSource) add(path string, data []byte) {
	m.files[path] = data
}

func (m *memSource) Glob(pattern string) ([]string, error) {
	return globKeys(pattern, m.files)
}

func (m *memSource) Get(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, apierrors.ErrNotFound
	}
	return data, nil
}

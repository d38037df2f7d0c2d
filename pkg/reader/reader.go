package reader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
)

// Reader answers glob/get queries over an archive, regardless of which
// Writer backend produced it. Build one with Open.
type Reader struct {
	src    Source
	closer func()
}

// Open inspects path's extension to pick a backend: ".tar.gz"/".tgz"
// for tar+gzip, ".zip" for zip, anything else is treated as a plain
// directory. Use OpenOCI for a registry reference.
func Open(path string) (*Reader, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		src, err := newTarGzSource(path)
		if err != nil {
			return nil, err
		}
		return &Reader{src: src}, nil
	case strings.HasSuffix(path, ".zip"):
		src, err := newZipSource(path)
		if err != nil {
			return nil, err
		}
		return &Reader{src: src}, nil
	default:
		return &Reader{src: newDirSource(path)}, nil
	}
}

// OpenOCI pulls ref's layers into a temporary directory and serves the
// archive from there. Callers must call Close when done.
func OpenOCI(ref string) (*Reader, error) {
	src, err := newOCISource(ref)
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, closer: src.Close}, nil
}

// Close releases any resources Open/OpenOCI acquired (e.g. a pulled
// OCI staging directory). A no-op for non-OCI readers.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// Glob enumerates archive members matching p. p must be a glob-shaped
// ArchivePath (ClusterList or NamespacedList); an empty result is not
// an error.
func (r *Reader) Glob(p archivepath.ArchivePath) ([]string, error) {
	matches, err := r.src.Glob(p.String())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Get returns the raw bytes of a single archive member.
func (r *Reader) Get(p archivepath.ArchivePath) ([]byte, error) {
	return r.src.Get(p.String())
}

// GetPath is Get for a raw archive-relative path string, used for
// members reader callers address directly (logs, fixed discovery
// paths) rather than through an ArchivePath value.
func (r *Reader) GetPath(path string) ([]byte, error) {
	return r.src.Get(path)
}

// LoadList globs p, deserialises every match as YAML, and wraps the
// result in a {kind:"List", apiVersion:"v1", items:[...]} envelope.
func (r *Reader) LoadList(p archivepath.ArchivePath) (map[string]interface{}, error) {
	matches, err := r.Glob(p)
	if err != nil {
		return nil, err
	}

	items := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		data, err := r.src.Get(m)
		if err != nil {
			return nil, err
		}
		var obj map[string]interface{}
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: decoding %q: %v", apierrors.ErrParse, m, err)
		}
		items = append(items, obj)
	}

	return map[string]interface{}{
		"kind":       "List",
		"apiVersion": "v1",
		"items":      items,
	}, nil
}

// crdObjectName derives "<kind>.<group>", the archived object name for
// a resource's own CustomResourceDefinition.
func crdObjectName(kind, group string) string {
	return filepath.ToSlash(kind) + "." + group
}

package reader

import "github.com/crust-gather/kubesnap/pkg/writer/ociwriter"

// ociSource pulls ref's layers into a temporary directory on
// construction and then answers Glob/Get exactly like dirSource. There
// is no separate in-memory index for the OCI backend: the pulled
// FileStore's own directory tree serves directly, since oras-go's
// FileStore already materialises each layer as a real file named by
// its archive path.
type ociSource struct {
	*dirSource
	cleanup func()
}

func newOCISource(ref string) (*ociSource, error) {
	dir, cleanup, err := ociwriter.Pull(ref)
	if err != nil {
		return nil, err
	}
	return &ociSource{dirSource: newDirSource(dir), cleanup: cleanup}, nil
}

// Close releases the pulled temporary directory. Callers that opened
// an OCI-backed Reader should defer Close once done serving it.
func (o *ociSource) Close() {
	o.cleanup()
}

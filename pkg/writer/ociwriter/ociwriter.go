// Package ociwriter implements the OCI-registry-push Writer backend:
// representations are staged as real files under a temporary directory
// via an oras-go FileStore, then pushed as the layers of one artifact
// on Finish. Grounded on pkg/oci/oci.go and pkg/gator/oci.go's
// dockerauth/content/oras pull plumbing, used here in its push
// direction.
package ociwriter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"oras.land/oras-go/pkg/auth"
	dockerauth "oras.land/oras-go/pkg/auth/docker"
	"oras.land/oras-go/pkg/content"
	"oras.land/oras-go/pkg/oras"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

const mediaType = "application/vnd.kubesnap.archive.member"

// Backend stages representations on disk under a FileStore and pushes
// them as one artifact's layers when Finish is called.
type Backend struct {
	ref   string
	dir   string
	store *content.FileStore
	descs []ocispec.Descriptor
}

// New returns a Backend that will push to ref (a full
// "registry/repo:tag" reference) on Finish, staging member files under
// a freshly created temporary directory.
func New(ref string) (*Backend, error) {
	dir, err := os.MkdirTemp("", "kubesnap-oci-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating staging directory: %v", apierrors.ErrWrite, err)
	}
	return &Backend{ref: ref, dir: dir, store: content.NewFile(dir)}, nil
}

// Write stages repr's bytes as a file under the backend's temporary
// directory, preserving repr.Path as the file's relative name and
// registering it as a layer descriptor.
func (b *Backend) Write(repr representation.Representation) error {
	rel := repr.Path.String()
	full := filepath.Join(b.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o777); err != nil {
		return fmt.Errorf("%w: staging directory for %q: %v", apierrors.ErrWrite, rel, err)
	}
	if err := os.WriteFile(full, repr.Data, 0o644); err != nil {
		return fmt.Errorf("%w: staging file %q: %v", apierrors.ErrWrite, rel, err)
	}

	desc, err := b.store.Add(rel, mediaType, full)
	if err != nil {
		return fmt.Errorf("%w: registering layer %q: %v", apierrors.ErrWrite, rel, err)
	}
	b.descs = append(b.descs, desc)
	return nil
}

// Finish authenticates against the registry named by ref and pushes
// every staged layer as one artifact, then removes the staging
// directory.
func (b *Backend) Finish() error {
	defer b.store.Close()
	defer os.RemoveAll(b.dir)

	ctx := context.Background()
	cli, err := dockerauth.NewClient()
	if err != nil {
		return fmt.Errorf("%w: docker auth client: %v", apierrors.ErrWrite, err)
	}
	resolver, err := cli.ResolverWithOpts(auth.WithResolverClient(http.DefaultClient))
	if err != nil {
		return fmt.Errorf("%w: docker resolver: %v", apierrors.ErrWrite, err)
	}

	if _, err := oras.Push(ctx, resolver, b.ref, b.store, b.descs); err != nil {
		return fmt.Errorf("%w: pushing artifact %q: %v", apierrors.ErrWrite, b.ref, err)
	}
	return nil
}

package ociwriter

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"oras.land/oras-go/pkg/auth"
	dockerauth "oras.land/oras-go/pkg/auth/docker"
	"oras.land/oras-go/pkg/content"
	"oras.land/oras-go/pkg/oras"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
)

// Pull resolves ref and pulls its layers into a fresh temporary
// directory, mirroring pkg/oci.PullImage. The returned directory holds
// one real file per archived path (the FileStore restores each layer's
// original relative name), so a Reader can glob/read it exactly like
// the plain directory backend. The returned cleanup func removes the
// directory; callers must defer it.
func Pull(ref string) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "kubesnap-oci-pull-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: creating pull directory: %v", apierrors.ErrWrite, err)
	}

	cli, err := dockerauth.NewClient()
	if err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("%w: docker auth client: %v", apierrors.ErrAPI, err)
	}
	resolver, err := cli.ResolverWithOpts(auth.WithResolverClient(http.DefaultClient))
	if err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("%w: docker resolver: %v", apierrors.ErrAPI, err)
	}

	store := content.NewFile(dir)
	cleanup = func() {
		store.Close()
		os.RemoveAll(dir)
	}

	if _, err := oras.Copy(context.Background(), content.Registry{Resolver: resolver}, ref, store, ""); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: pulling artifact %q: %v", apierrors.ErrAPI, ref, err)
	}

	return dir, cleanup, nil
}

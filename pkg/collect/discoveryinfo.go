package collect

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/discovery"
	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// apiGroupDiscoveryContentType is the aggregated-discovery content
// type the discovery metadata uses for the raw api.json/apis.json documents.
const apiGroupDiscoveryContentType = "application/json;g=apidiscovery.k8s.io;v=v2beta1;as=APIGroupDiscoveryList"

// Info collects the four fixed discovery/meta archive members:
// version.yaml, api.json, apis.json, and collected.timestamp.
type Info struct {
	Discovery discovery.DiscoveryInterface
	Writer    *writer.Writer
}

// Collect fetches the server version and raw discovery documents and
// stores all four fixed-path representations.
func (i *Info) Collect(ctx context.Context) error {
	if err := i.collectVersion(); err != nil {
		return err
	}
	if err := i.collectDiscoveryDoc(ctx, "/api", "api.json"); err != nil {
		return err
	}
	if err := i.collectDiscoveryDoc(ctx, "/apis", "apis.json"); err != nil {
		return err
	}
	return i.collectTimestamp()
}

func (i *Info) collectVersion() error {
	v, err := i.Discovery.ServerVersion()
	if err != nil {
		return fmt.Errorf("%w: fetching server version: %v", apierrors.ErrAPI, err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshalling server version: %v", apierrors.ErrWrite, err)
	}
	return i.Writer.Store(representation.New(archivepath.NewCustomPath("version.yaml"), data))
}

func (i *Info) collectDiscoveryDoc(ctx context.Context, absPath, archiveName string) error {
	raw, err := i.Discovery.RESTClient().Get().
		AbsPath(absPath).
		SetHeader("Accept", apiGroupDiscoveryContentType).
		Do(ctx).
		Raw()
	if err != nil {
		return fmt.Errorf("%w: fetching discovery document %s: %v", apierrors.ErrAPI, absPath, err)
	}
	return i.Writer.Store(representation.New(archivepath.NewCustomPath(archiveName), raw))
}

func (i *Info) collectTimestamp() error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return i.Writer.Store(representation.New(archivepath.NewCustomPath("collected.timestamp"), []byte(stamp)))
}

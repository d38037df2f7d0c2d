package collect

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/filter"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// Generic collects every object of one GVR, writing one YAML
// representation per object at its canonical ArchivePath.
type Generic struct {
	GVK       gvk.GVK
	GVR       schema.GroupVersionResource
	Client    dynamic.Interface
	Filters   *filter.Set
	Writer    *writer.Writer
	Namespace string // restricts List to one namespace; empty lists all
}

// List fetches every object of g.GVR, namespace-scoped if g.Namespace
// is set.
func (g *Generic) List(ctx context.Context) ([]unstructured.Unstructured, error) {
	var ri dynamic.ResourceInterface = g.Client.Resource(g.GVR)
	if g.Namespace != "" {
		ri = g.Client.Resource(g.GVR).Namespace(g.Namespace)
	}

	list, err := ri.List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", apierrors.ErrAPI, g.GVR, err)
	}
	return list.Items, nil
}

// Filter reports whether obj passes the object-level axis of Filters.
func (g *Generic) Filter(obj unstructured.Unstructured) bool {
	if g.Filters == nil {
		return true
	}
	return g.Filters.AcceptObject(obj.GetNamespace())
}

// Representations emits a single YAML representation for obj, with
// apiVersion/kind injected before serialisation.
func (g *Generic) Representations(obj unstructured.Unstructured) ([]representation.Representation, error) {
	obj.SetAPIVersion(g.GVK.APIVersion())
	obj.SetKind(g.GVK.Kind)

	data, err := yaml.Marshal(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("%w: marshalling %s/%s: %v", apierrors.ErrWrite, obj.GetNamespace(), obj.GetName(), err)
	}

	id := nsname.NamespaceName{Namespace: obj.GetNamespace(), Name: obj.GetName()}
	path := archivepath.NewObjectPath(g.GVK, id)
	return []representation.Representation{representation.New(path, data)}, nil
}

// Collect lists, filters, and stores every surviving object.
func (g *Generic) Collect(ctx context.Context) error {
	objs, err := g.List(ctx)
	if err != nil {
		return err
	}
	for _, obj := range objs {
		if !g.Filter(obj) {
			continue
		}
		reprs, err := g.Representations(obj)
		if err != nil {
			return err
		}
		if err := storeAll(g.Writer, reprs); err != nil {
			return err
		}
	}
	return nil
}

package collect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"

	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/filter"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
	"github.com/crust-gather/kubesnap/pkg/reader"
	"github.com/crust-gather/kubesnap/pkg/writer"
	"github.com/crust-gather/kubesnap/pkg/writer/dirwriter"
)

func newConfigMap(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
	}}
}

func TestGenericCollectStoresEverySurvivingObject(t *testing.T) {
	scheme := runtime.NewScheme()
	gvr := schema.GroupVersionResource{Version: "v1", Resource: "configmaps"}

	client := dynamicfake.NewSimpleDynamicClient(scheme,
		newConfigMap("default", "keep"),
		newConfigMap("kube-system", "drop"),
	)

	base := t.TempDir()
	backend, err := dirwriter.New(base)
	require.NoError(t, err)
	w := writer.New(backend)

	nsFilter, err := filter.NewNamespace("default", false)
	require.NoError(t, err)
	filters := filter.New(nsFilter)

	g := &Generic{
		GVK:     gvk.GVK{Version: "v1", Kind: "ConfigMap"},
		GVR:     gvr,
		Client:  client,
		Filters: filters,
		Writer:  w,
	}

	require.NoError(t, g.Collect(context.Background()))
	require.NoError(t, w.Finish())

	r, err := reader.Open(base)
	require.NoError(t, err)

	keepPath := archivepath.NewObjectPath(g.GVK, nsname.NamespaceName{Namespace: "default", Name: "keep"})
	data, err := r.Get(keepPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: keep")

	dropPath := archivepath.NewObjectPath(g.GVK, nsname.NamespaceName{Namespace: "kube-system", Name: "drop"})
	_, err = r.Get(dropPath)
	assert.Error(t, err)
}

func TestGenericCollectNoFilterKeepsEverything(t *testing.T) {
	scheme := runtime.NewScheme()
	gvr := schema.GroupVersionResource{Version: "v1", Resource: "configmaps"}
	client := dynamicfake.NewSimpleDynamicClient(scheme, newConfigMap("ns-a", "one"))

	base := t.TempDir()
	backend, err := dirwriter.New(base)
	require.NoError(t, err)
	w := writer.New(backend)

	g := &Generic{
		GVK:    gvk.GVK{Version: "v1", Kind: "ConfigMap"},
		GVR:    gvr,
		Client: client,
		Writer: w,
	}
	require.NoError(t, g.Collect(context.Background()))
	require.NoError(t, w.Finish())

	r, err := reader.Open(base)
	require.NoError(t, err)
	_, err = r.Get(archivepath.NewObjectPath(g.GVK, nsname.NamespaceName{Namespace: "ns-a", Name: "one"}))
	require.NoError(t, err)
}

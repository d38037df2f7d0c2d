package archivepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
)

func TestNewObjectPathClusterScoped(t *testing.T) {
	p := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Node"}, nsname.NamespaceName{Name: "n1"})
	assert.Equal(t, Cluster, p.Kind())
	assert.Equal(t, "cluster/v1/node/n1.yaml", p.String())
}

func TestNewObjectPathNamespaced(t *testing.T) {
	p := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Pod"}, nsname.NamespaceName{Namespace: "default", Name: "p"})
	assert.Equal(t, Namespaced, p.Kind())
	assert.Equal(t, "namespaces/default/v1/pod/p.yaml", p.String())
}

func TestNewObjectPathGroupedGVK(t *testing.T) {
	p := NewObjectPath(gvk.GVK{Group: "apps", Version: "v1", Kind: "Deployment"}, nsname.NamespaceName{Namespace: "ns", Name: "d"})
	assert.Equal(t, "namespaces/ns/apps-v1/deployment/d.yaml", p.String())
}

func TestNewListPathCluster(t *testing.T) {
	p := NewListPath(gvk.GVK{Version: "v1", Kind: "Node"}, "")
	require.True(t, p.IsGlob())
	assert.Equal(t, ClusterList, p.Kind())
	assert.Equal(t, "**/v1/node/*.yaml", p.String())
}

func TestNewListPathNamespaced(t *testing.T) {
	p := NewListPath(gvk.GVK{Version: "v1", Kind: "Pod"}, "default")
	require.True(t, p.IsGlob())
	assert.Equal(t, NamespacedList, p.Kind())
	assert.Equal(t, "namespaces/default/v1/pod/*.yaml", p.String())
}

func TestNewLogPathCurrentContainer(t *testing.T) {
	obj := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Pod"}, nsname.NamespaceName{Namespace: "default", Name: "p"})
	p := NewLogPath(obj, CurrentLog("c"))
	assert.Equal(t, Logs, p.Kind())
	assert.Equal(t, "namespaces/default/v1/pod/p/c/current.log", p.String())
}

func TestNewLogPathPreviousContainer(t *testing.T) {
	obj := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Pod"}, nsname.NamespaceName{Namespace: "default", Name: "p"})
	p := NewLogPath(obj, PreviousLog("c"))
	assert.Equal(t, "namespaces/default/v1/pod/p/c/previous.log", p.String())
}

func TestNewLogPathNodeKubelet(t *testing.T) {
	obj := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Node"}, nsname.NamespaceName{Name: "n1"})
	p := NewLogPath(obj, NodeKubeletLog())
	assert.Equal(t, "cluster/v1/node/n1/kubelet.log", p.String())
}

func TestNewLogPathNodeKubeletPath(t *testing.T) {
	obj := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Node"}, nsname.NamespaceName{Name: "n1"})
	p := NewLogPath(obj, NodeKubeletPathLog())
	assert.Equal(t, "cluster/v1/node/n1/kubelet-log-path.log", p.String())
}

func TestNewLogPathCustomUnit(t *testing.T) {
	obj := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Node"}, nsname.NamespaceName{Name: "n1"})
	p := NewLogPath(obj, CustomUserLogGroup("containerd"))
	assert.Equal(t, "cluster/v1/node/n1/containerd.log", p.String())
}

func TestNewCustomPath(t *testing.T) {
	p := NewCustomPath("version.yaml")
	assert.Equal(t, Custom, p.Kind())
	assert.Equal(t, "version.yaml", p.String())
}

func TestSanitizeForbiddenChars(t *testing.T) {
	p := NewCustomPath(`weird:name*here?file|name.yaml`)
	assert.Equal(t, "weird-name-here-file-name.yaml", p.String())
}

func TestUniqueIdentityInvariant(t *testing.T) {
	a := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Pod"}, nsname.NamespaceName{Namespace: "a", Name: "x"})
	b := NewObjectPath(gvk.GVK{Version: "v1", Kind: "Pod"}, nsname.NamespaceName{Namespace: "b", Name: "x"})
	assert.NotEqual(t, a.String(), b.String())
}

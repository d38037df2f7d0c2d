package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crust-gather/kubesnap/pkg/gvk"
)

func TestEmptyFilterSetAcceptsEverything(t *testing.T) {
	s := New()
	assert.True(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Pod"}))
	assert.True(t, s.AcceptObject("any-namespace"))
	assert.True(t, s.AcceptObject(""))
}

func TestNamespaceIncludeIsDisjunctiveAcrossMatches(t *testing.T) {
	kube, err := NewNamespace("^kube-.*", false)
	require.NoError(t, err)
	def, err := NewNamespace("^default$", false)
	require.NoError(t, err)

	s := New(kube, def)
	assert.True(t, s.AcceptObject("kube-system"))
	assert.True(t, s.AcceptObject("default"))
	assert.False(t, s.AcceptObject("other"))
}

func TestNamespaceExcludeNegatesMatch(t *testing.T) {
	excl, err := NewNamespace("^kube-.*", true)
	require.NoError(t, err)

	s := New(excl)
	assert.False(t, s.AcceptObject("kube-system"))
	assert.True(t, s.AcceptObject("default"))
}

func TestClusterScopedObjectsAlwaysPassNamespaceFilters(t *testing.T) {
	excl, err := NewNamespace(".*", true)
	require.NoError(t, err)
	s := New(excl)
	assert.True(t, s.AcceptObject(""))
}

func TestKindFilterIsAPILevelOnly(t *testing.T) {
	incl, err := NewKind("^Pod$", false)
	require.NoError(t, err)
	s := New(incl)

	assert.True(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Pod"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Node"}))
	// Namespace axis is untouched by a kind-only filter set.
	assert.True(t, s.AcceptObject("whatever"))
}

func TestGroupFilterBareGroupMatchesAllKinds(t *testing.T) {
	incl, err := NewGroup("apps", false)
	require.NoError(t, err)
	s := New(incl)

	assert.True(t, s.AcceptAPI(gvk.GVK{Group: "apps", Version: "v1", Kind: "Deployment"}))
	assert.True(t, s.AcceptAPI(gvk.GVK{Group: "apps", Version: "v1", Kind: "ReplicaSet"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Group: "batch", Version: "v1", Kind: "Job"}))
}

func TestGroupFilterEmptyGroupAnchorsToCoreGroup(t *testing.T) {
	incl, err := NewGroup("/Pod", false)
	require.NoError(t, err)
	s := New(incl)

	assert.True(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Pod"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Group: "apps", Version: "v1", Kind: "Pod"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Node"}))
}

func TestExcludeConjunctionFailsOnSingleMatch(t *testing.T) {
	exclKind, err := NewKind("^Secret$", true)
	require.NoError(t, err)
	exclGroup, err := NewGroup("batch", true)
	require.NoError(t, err)
	s := New(exclKind, exclGroup)

	assert.False(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Secret"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Group: "batch", Version: "v1", Kind: "Job"}))
	assert.True(t, s.AcceptAPI(gvk.GVK{Version: "v1", Kind: "Pod"}))
}

func TestIncludeAndExcludeCombineAsConjunctionOfDisjunctions(t *testing.T) {
	inclApps, err := NewGroup("apps", false)
	require.NoError(t, err)
	exclKind, err := NewKind("^ReplicaSet$", true)
	require.NoError(t, err)
	s := New(inclApps, exclKind)

	assert.True(t, s.AcceptAPI(gvk.GVK{Group: "apps", Version: "v1", Kind: "Deployment"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Group: "apps", Version: "v1", Kind: "ReplicaSet"}))
	assert.False(t, s.AcceptAPI(gvk.GVK{Group: "batch", Version: "v1", Kind: "Job"}))
}

func TestInvalidRegexSurfacesConfigError(t *testing.T) {
	_, err := NewNamespace("(", false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "config error")
}

func TestAcceptCombinesBothAxes(t *testing.T) {
	inclKind, err := NewKind("^Pod$", false)
	require.NoError(t, err)
	exclNs, err := NewNamespace("^kube-.*", true)
	require.NoError(t, err)
	s := New(inclKind, exclNs)

	assert.True(t, s.Accept(gvk.GVK{Version: "v1", Kind: "Pod"}, "default"))
	assert.False(t, s.Accept(gvk.GVK{Version: "v1", Kind: "Pod"}, "kube-system"))
	assert.False(t, s.Accept(gvk.GVK{Version: "v1", Kind: "Node"}, "default"))
}

package replayserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
	"github.com/crust-gather/kubesnap/pkg/reader"
	"github.com/crust-gather/kubesnap/pkg/representation"
	"github.com/crust-gather/kubesnap/pkg/writer"
	"github.com/crust-gather/kubesnap/pkg/writer/dirwriter"
)

func newFixtureServer(t *testing.T) *Server {
	t.Helper()
	base := t.TempDir()
	backend, err := dirwriter.New(base)
	require.NoError(t, err)
	w := writer.New(backend)

	require.NoError(t, w.Store(representation.New(
		archivepath.NewCustomPath("version.yaml"), []byte("gitVersion: v1.30.2\n"))))
	require.NoError(t, w.Store(representation.New(
		archivepath.NewCustomPath("api.json"), []byte(`{"kind":"APIVersions"}`))))

	podGVK := gvk.GVK{Version: "v1", Kind: "Pod"}
	podPath := archivepath.NewObjectPath(podGVK, nsname.NamespaceName{Namespace: "default", Name: "p1"})
	require.NoError(t, w.Store(representation.New(podPath,
		[]byte("metadata:\n  name: p1\n  namespace: default\n"))))
	require.NoError(t, w.Store(representation.New(
		archivepath.NewLogPath(podPath, archivepath.CurrentLog("app")), []byte("hello from p1\n"))))

	nsGVK := gvk.GVK{Version: "v1", Kind: "Namespace"}
	for _, n := range []struct{ name, phase string }{{"n1", "Active"}, {"n2", "Terminating"}} {
		p := archivepath.NewObjectPath(nsGVK, nsname.NamespaceName{Name: n.name})
		require.NoError(t, w.Store(representation.New(p,
			[]byte("metadata:\n  name: "+n.name+"\nstatus:\n  phase: "+n.phase+"\n"))))
	}
	crdPath := archivepath.NewObjectPath(
		gvk.GVK{Group: "apiextensions.k8s.io", Version: "v1", Kind: "CustomResourceDefinition"},
		nsname.NamespaceName{Name: "Namespace."},
	)
	require.NoError(t, w.Store(representation.New(crdPath, []byte(`
spec:
  versions:
  - name: v1
    additionalPrinterColumns:
    - name: Status
      type: string
      jsonPath: .status.phase
`))))

	require.NoError(t, w.Finish())

	r, err := reader.Open(base)
	require.NoError(t, err)

	return New().WithReader(r).Init()
}

func TestHandleVersionReturnsJSON(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gitVersion":"v1.30.2"`)
}

func TestHandleGetSingleObject(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces/default/Pod/p1", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"p1"`)
}

func TestHandleGetMissingObjectIs404(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces/default/Pod/missing", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListReturnsListByDefault(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/Namespace", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"List"`)
	assert.Contains(t, rec.Body.String(), "n1")
	assert.Contains(t, rec.Body.String(), "n2")
}

func TestHandleListReturnsTableOnNegotiation(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/Namespace", nil)
	req.Header.Set("Accept", "application/json;as=Table;v=v1;g=meta.k8s.io")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"kind":"Table"`)
	assert.Contains(t, body, `"Status"`)
	assert.Contains(t, body, "Active")
	assert.Contains(t, body, "Terminating")
}

func TestHandleLogReturnsRawBytes(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces/default/Pod/p1/log?container=app", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello from p1\n", rec.Body.String())
}

func TestHandleSelfSubjectAccessReviewAllows(t *testing.T) {
	s := newFixtureServer(t)
	req := httptest.NewRequest(http.MethodPost, "/apis/authorization.k8s.io/v1/selfsubjectaccessreviews", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"allowed":true`)
}

func TestWantsTableMatchesFirstAcceptItemOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json, application/json;as=Table")
	assert.False(t, wantsTable(req))

	req.Header.Set("Accept", "application/json;as=Table, application/json")
	assert.True(t, wantsTable(req))
}

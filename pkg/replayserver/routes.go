package replayserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/nsname"
)

// apiGroupDiscoveryContentType mirrors the header collect.Info stores
// api.json/apis.json under; the replay server serves the raw document
// back with the same content type so a discovery-aware client parses
// it identically.
const apiGroupDiscoveryContentType = "application/json;g=apidiscovery.k8s.io;v=v2beta1;as=APIGroupDiscoveryList"

// wantsTable reports whether r asked for the Table projection, per the
// loose substring match real kubectl relies on: "as=Table" anywhere in
// the first comma-separated item of Accept.
func wantsTable(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	first := accept
	if idx := strings.IndexByte(accept, ','); idx >= 0 {
		first = accept[:idx]
	}
	return strings.Contains(first, "as=Table")
}

func (s *Server) handleVersion(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	data, err := s.Reader.GetPath("version.yaml")
	s.writeYAMLAsJSON(logger, w, data, err)
}

func (s *Server) handleAPI(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	s.writeDiscoveryDoc(logger, w, "api.json")
}

func (s *Server) handleAPIs(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	s.writeDiscoveryDoc(logger, w, "apis.json")
}

func (s *Server) writeDiscoveryDoc(logger logr.Logger, w http.ResponseWriter, archiveName string) {
	data, err := s.Reader.GetPath(archiveName)
	if err != nil {
		writeError(logger, w, err)
		return
	}
	w.Header().Set("Content-Type", apiGroupDiscoveryContentType)
	_, _ = w.Write(data)
}

// handleList answers both the cluster-scoped and namespaced list
// routes; vars["namespace"] is empty for the former. The {kind} path
// segment is matched exactly against the archived Kind (e.g. "Pod",
// not "pods"): the archive is keyed by Kind throughout, and this
// server has no plural-resource-name index to translate a REST
// resource name back to one.
func (s *Server) handleList(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g := gvk.GVK{Group: vars["group"], Version: vars["version"], Kind: vars["kind"]}

	p := archivepath.NewListPath(g, vars["namespace"])

	var payload map[string]interface{}
	var err error
	if wantsTable(r) {
		payload, err = s.Reader.LoadTable(g, p)
	} else {
		payload, err = s.Reader.LoadList(p)
	}
	if err != nil {
		writeError(logger, w, err)
		return
	}
	writeJSON(w, payload)
}

func (s *Server) handleGet(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g := gvk.GVK{Group: vars["group"], Version: vars["version"], Kind: vars["kind"]}
	id := nsname.NamespaceName{Namespace: vars["namespace"], Name: vars["name"]}

	data, err := s.Reader.Get(archivepath.NewObjectPath(g, id))
	s.writeYAMLAsJSON(logger, w, data, err)
}

func (s *Server) handleLog(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g := gvk.GVK{Group: vars["group"], Version: vars["version"], Kind: vars["kind"]}
	id := nsname.NamespaceName{Namespace: vars["namespace"], Name: vars["name"]}

	objPath := archivepath.NewObjectPath(g, id)
	container := archivepath.Container(r.URL.Query().Get("container"))

	var group archivepath.LogGroup
	if r.URL.Query().Get("previous") == "true" {
		group = archivepath.PreviousLog(container)
	} else {
		group = archivepath.CurrentLog(container)
	}

	data, err := s.Reader.Get(archivepath.NewLogPath(objPath, group))
	if err != nil {
		writeError(logger, w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write(data)
}

// handleSelfSubjectAccessReview answers every access review as
// allowed, letting "kubectl auth can-i" and client-go's preflight
// checks succeed against the replay.
func (s *Server) handleSelfSubjectAccessReview(logger logr.Logger, w http.ResponseWriter, r *http.Request) {
	resp := authorizationv1.SelfSubjectAccessReview{
		TypeMeta: metav1.TypeMeta{Kind: "SelfSubjectAccessReview", APIVersion: "authorization.k8s.io/v1"},
		Status:   authorizationv1.SubjectAccessReviewStatus{Allowed: true},
	}
	writeJSON(w, resp)
}

// writeYAMLAsJSON converts a YAML archive member to JSON and writes
// it, or maps err to an HTTP status if the lookup failed.
func (s *Server) writeYAMLAsJSON(logger logr.Logger, w http.ResponseWriter, data []byte, err error) {
	if err != nil {
		writeError(logger, w, err)
		return
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		writeError(logger, w, errors.Join(apierrors.ErrParse, err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(jsonData)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the archive/parse error taxonomy onto the two HTTP
// statuses the replay contract promises: a missing member is 404, a
// deserialisation failure is 422, anything else is a 500.
func writeError(logger logr.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apierrors.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apierrors.ErrParse):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error(err, "unexpected replay error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

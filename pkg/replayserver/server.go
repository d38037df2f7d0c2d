// Package replayserver serves a collected archive back over HTTP,
// mirroring enough of the Kubernetes discovery and REST conventions
// that kubectl and other standard clients can browse it offline.
// Grounded on the teacher's dormant pkg/server/server.go: a
// gorilla/mux router behind a panic-recovering, latency-logging
// appHandler middleware, and an address-list Listeners/Loop
// abstraction for binding one or more addresses. The admission-webhook
// routes and Opa client are replaced with the replay route table and a
// Reader.
package replayserver

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"

	"github.com/crust-gather/kubesnap/pkg/reader"
)

// Server serves one archive's worth of Reader state over one or more
// bound addresses.
type Server struct {
	Handler http.Handler

	router *mux.Router
	addrs  []string
	Reader *reader.Reader
	Log    logr.Logger
}

// Loop blocks serving connections on one bound address.
type Loop func() error

// New returns an uninitialised Server; call Init before Listeners.
func New() *Server {
	return &Server{Log: logr.Discard()}
}

// Init builds the route table. This function MUST be called before
// Listeners.
func (s *Server) Init() *Server {
	s.initRouter()
	return s
}

// WithAddresses sets the listening addresses the server will bind to.
func (s *Server) WithAddresses(addrs []string) *Server {
	s.addrs = addrs
	return s
}

// WithReader sets the archive the server answers requests from.
func (s *Server) WithReader(r *reader.Reader) *Server {
	s.Reader = r
	return s
}

// WithLog sets the logger used by the request middleware.
func (s *Server) WithLog(log logr.Logger) *Server {
	s.Log = log
	return s
}

// Listeners returns one Loop per configured address.
func (s *Server) Listeners() ([]Loop, error) {
	loops := make([]Loop, 0, len(s.addrs))
	for _, addr := range s.addrs {
		parsedURL, err := parseURL(addr)
		if err != nil {
			return nil, err
		}
		if parsedURL.Scheme != "http" {
			return nil, fmt.Errorf("invalid url scheme %q", parsedURL.Scheme)
		}
		httpServer := http.Server{
			Addr:    parsedURL.Host,
			Handler: s.Handler,
		}
		loops = append(loops, func() error { return httpServer.ListenAndServe() })
	}
	return loops, nil
}

func (s *Server) initRouter() {
	router := s.router
	if router == nil {
		router = mux.NewRouter()
	}
	router.UseEncodedPath()
	router.StrictSlash(true)

	router.Handle("/version", appHandler{s, s.handleVersion}).Methods(http.MethodGet)
	router.Handle("/api", appHandler{s, s.handleAPI}).Methods(http.MethodGet)
	router.Handle("/apis", appHandler{s, s.handleAPIs}).Methods(http.MethodGet)
	router.Handle("/apis/authorization.k8s.io/v1/selfsubjectaccessreviews",
		appHandler{s, s.handleSelfSubjectAccessReview}).Methods(http.MethodPost)

	// Namespaced routes are registered ahead of the cluster-scoped
	// ones sharing the same segment count, so the literal "namespaces"
	// segment wins any ambiguity.
	router.Handle("/api/{version}/namespaces/{namespace}/{kind}/{name}/log",
		appHandler{s, s.handleLog}).Methods(http.MethodGet)
	router.Handle("/apis/{group}/{version}/namespaces/{namespace}/{kind}/{name}/log",
		appHandler{s, s.handleLog}).Methods(http.MethodGet)
	router.Handle("/api/{version}/namespaces/{namespace}/{kind}/{name}",
		appHandler{s, s.handleGet}).Methods(http.MethodGet)
	router.Handle("/apis/{group}/{version}/namespaces/{namespace}/{kind}/{name}",
		appHandler{s, s.handleGet}).Methods(http.MethodGet)
	router.Handle("/api/{version}/namespaces/{namespace}/{kind}",
		appHandler{s, s.handleList}).Methods(http.MethodGet)
	router.Handle("/apis/{group}/{version}/namespaces/{namespace}/{kind}",
		appHandler{s, s.handleList}).Methods(http.MethodGet)

	router.Handle("/api/{version}/{kind}/{name}", appHandler{s, s.handleGet}).Methods(http.MethodGet)
	router.Handle("/apis/{group}/{version}/{kind}/{name}", appHandler{s, s.handleGet}).Methods(http.MethodGet)
	router.Handle("/api/{version}/{kind}", appHandler{s, s.handleList}).Methods(http.MethodGet)
	router.Handle("/apis/{group}/{version}/{kind}", appHandler{s, s.handleList}).Methods(http.MethodGet)

	s.Handler = router
}

// appHandler pairs a Server with one of its route methods so ServeHTTP
// can recover panics and log latency around every request uniformly.
type appHandler struct {
	s *Server
	fn func(logr.Logger, http.ResponseWriter, *http.Request)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

// ServeHTTP implements the net/http handler interface and recovers
// from panics in the wrapped route method.
func (a appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := a.s.Log.WithValues(
		"req.method", r.Method,
		"req.path", r.URL.Path,
		"req.remote", parseRemoteAddr(r.RemoteAddr),
	)
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			_, file, line, _ := runtime.Caller(3)
			stack := string(debug.Stack())
			var err error
			switch t := rec.(type) {
			case string:
				err = errors.New(t)
			case error:
				err = t
			default:
				err = errors.New("unknown panic")
			}
			logger.Error(err, "panic processing request", "file", file, "line", line, "stack", stack)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}()
	rw := newResponseWriter(w)
	a.fn(logger, rw, r)
	logger.V(1).Info("handled request", "status", rw.statusCode, "latency", time.Since(start))
}

func parseRemoteAddr(addr string) string {
	n := strings.IndexByte(addr, ':')
	if n <= 1 {
		return ""
	}
	hostname := addr[0:n]
	if net.ParseIP(hostname) == nil {
		return ""
	}
	return hostname
}

func parseURL(s string) (*url.URL, error) {
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	return url.Parse(s)
}

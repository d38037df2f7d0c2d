// Package writer implements the archive-backend-agnostic Writer:
// secret redaction at a single chokepoint, and an exclusive lock
// serialising every store/finish call across the collectors that
// share one Writer.
package writer

import (
	"os"
	"strings"
	"sync"

	"github.com/crust-gather/kubesnap/pkg/metrics"
	"github.com/crust-gather/kubesnap/pkg/representation"
)

// Backend is implemented by each of the four archive container formats
// (tar+gzip, zip, directory, OCI). Write and Finish are called with the
// Writer's lock already held; a Backend need not synchronise itself.
type Backend interface {
	Write(repr representation.Representation) error
	Finish() error
}

// Writer serialises concurrent collectors' stores against a single
// Backend and redacts registered secrets before any byte reaches it.
type Writer struct {
	mu      sync.Mutex
	backend Backend
	secrets []string
}

// New builds a Writer over backend. secretEnvVars names environment
// variables whose current values are registered for redaction; a
// missing variable contributes the empty string, which Store treats as
// "no substitution" rather than replacing every byte.
func New(backend Backend, secretEnvVars ...string) *Writer {
	w := &Writer{backend: backend}
	for _, name := range secretEnvVars {
		if v := os.Getenv(name); v != "" {
			w.secrets = append(w.secrets, v)
		}
	}
	return w
}

// Store redacts repr.Data in place of every registered secret, then
// hands the result to the backend under the Writer's lock.
func (w *Writer) Store(repr representation.Representation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	repr.Data = redact(repr.Data, w.secrets)
	if err := w.backend.Write(repr); err != nil {
		return err
	}
	metrics.ObjectsTotal.Inc()
	return nil
}

// Finish flushes and closes the backend. Callers must not Store after
// Finish returns.
func (w *Writer) Finish() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.backend.Finish()
}

const redacted = "***"

// redact replaces every occurrence of every non-empty secret in data
// with the literal "***". Secrets are applied one after another in
// registration order, each as a plain substring replacement, so when one
// secret contains another the order decides which is replaced.
func redact(data []byte, secrets []string) []byte {
	if len(secrets) == 0 {
		return data
	}
	s := string(data)
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return []byte(s)
}

// Package apierrors defines the error taxonomy shared across kubesnap's
// collection and replay pipelines. Each kind is a sentinel that callers
// match with errors.Is, with details attached via fmt.Errorf("%w").
package apierrors

import "errors"

var (
	// ErrConfig marks invalid CLI/YAML input, regex compile failures, or an
	// unreadable kubeconfig. Always fatal at startup.
	ErrConfig = errors.New("config error")

	// ErrAPI marks a transport/auth/5xx failure from the Kubernetes API.
	// Per-GVK occurrences are recoverable; discovery-wide occurrences are not.
	ErrAPI = errors.New("api error")

	// ErrNotApplicable marks the expected HTTP 400 returned when requesting
	// previous-container logs for a container that never restarted.
	ErrNotApplicable = errors.New("not applicable")

	// ErrWrite marks an archive backend I/O failure. Always fatal.
	ErrWrite = errors.New("write error")

	// ErrPath marks an archive path containing un-encodable bytes.
	ErrPath = errors.New("path error")

	// ErrParse marks a selector or regex parse failure surfaced to callers
	// as HTTP 422 by the replay server.
	ErrParse = errors.New("parse error")

	// ErrNotFound marks a missing archive member. Surfaced as HTTP 404 by
	// the replay server.
	ErrNotFound = errors.New("not found")
)

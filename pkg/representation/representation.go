// Package representation defines the single value type that flows from
// a Collector through an Orchestrator to a Writer: an archive path
// paired with its serialised bytes.
package representation

import "github.com/crust-gather/kubesnap/pkg/archivepath"

// Representation is one archive member awaiting a Writer.
type Representation struct {
	Path archivepath.ArchivePath
	Data []byte
}

// New builds a Representation from an already-serialised payload.
func New(path archivepath.ArchivePath, data []byte) Representation {
	return Representation{Path: path, Data: data}
}

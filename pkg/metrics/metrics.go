// Package metrics registers the small counter pair the collection
// pipeline exports: total objects written and total collector errors
// tolerated. Grounded on the teacher's pkg/metrics concept of a
// package holding every named counter one spot, adapted here to
// register directly against prometheus/client_golang's default
// registry via promauto rather than the teacher's OpenTelemetry
// exporter chain, since that is this module's pinned metrics
// dependency. No scrape server is started by default; the counters
// are exported on prometheus.DefaultRegisterer for a caller to mount.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ObjectsTotal counts every Representation written to the archive
// across all collectors in a run.
var ObjectsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kubesnap_collect_objects_total",
	Help: "Total number of representations written to the archive.",
})

// ErrorsTotal counts collector failures the orchestrator tolerated
// (logged and skipped rather than aborting the run).
var ErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kubesnap_collect_errors_total",
	Help: "Total number of collector failures tolerated during collection.",
})

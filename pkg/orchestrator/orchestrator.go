// Package orchestrator drives the end-to-end collection pipeline:
// fetch the discovery document, fan out one Collector per surviving
// resource, drive every collector to completion, and finish the
// Writer. Grounded on pkg/watch/manager.go's errgroup.WithContext
// fan-out and pkg/audit/manager.go's ServerPreferredResources/LIST-verb
// filtering and per-group discovery-error tolerance.
package orchestrator

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/archivepath"
	"github.com/crust-gather/kubesnap/pkg/collect"
	"github.com/crust-gather/kubesnap/pkg/filter"
	"github.com/crust-gather/kubesnap/pkg/gvk"
	"github.com/crust-gather/kubesnap/pkg/metrics"
	"github.com/crust-gather/kubesnap/pkg/writer"
)

// Config wires an Orchestrator to its Kubernetes clients, filters, and
// archive writer.
type Config struct {
	RESTConfig *rest.Config
	Dynamic    dynamic.Interface
	Typed      kubernetes.Interface
	Discovery  discovery.DiscoveryInterface
	Writer     *writer.Writer
	Filters    *filter.Set
	Namespace  string

	EnableNodeJournal bool
	NodeJournalUnits  []string

	Log logr.Logger
}

// Orchestrator runs one full collection pass per Run call.
type Orchestrator struct {
	cfg Config
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// namedCollector pairs a Collector with a label used only for logging.
type namedCollector struct {
	label string
	c     collect.Collector
}

// Run fetches discovery, builds every collector, drives them all to
// completion concurrently, and calls Writer.Finish on the best-effort
// path: Finish always runs, even when a collector or the context is
// cancelled, so a cancelled run still produces a partial archive. Every
// log line emitted during the run carries a run_id so one collection
// pass's diagnostics can be correlated across collectors.
func (o *Orchestrator) Run(ctx context.Context) error {
	runLog := o.cfg.Log.WithValues("run_id", uuid.New().String())

	collectors, err := o.buildCollectors(runLog)
	if err != nil {
		return err
	}

	grp, gctx := errgroup.WithContext(ctx)
	for _, nc := range collectors {
		nc := nc
		grp.Go(func() error { return o.runOne(gctx, runLog, nc) })
	}
	runErr := grp.Wait()

	finishErr := o.cfg.Writer.Finish()
	if runErr != nil {
		return runErr
	}
	return finishErr
}

// runOne drives a single collector. A listing failure (ErrAPI) is
// logged and treated as success, per the fan-out's per-GVK tolerance;
// anything else (write failures, config errors) is fatal and cancels
// the sibling collectors via gctx.
func (o *Orchestrator) runOne(ctx context.Context, log logr.Logger, nc namedCollector) error {
	err := nc.c.Collect(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, apierrors.ErrAPI) {
		log.Error(err, "collector failed, skipping", "collector", nc.label)
		metrics.ErrorsTotal.Inc()
		return nil
	}
	return err
}

// buildCollectors assembles the fixed collectors (discovery-info,
// versions, node-journal) followed by the discovery-driven fan-out
// over every resource that survives the FilterSet's API axis.
func (o *Orchestrator) buildCollectors(log logr.Logger) ([]namedCollector, error) {
	collectors := []namedCollector{
		{"discovery-info", &collect.Info{Discovery: o.cfg.Discovery, Writer: o.cfg.Writer}},
		{"versions", &collect.Versions{Client: o.cfg.Typed, Writer: o.cfg.Writer}},
	}
	if o.cfg.EnableNodeJournal {
		collectors = append(collectors, namedCollector{"node-journal", &collect.NodeJournal{
			Client:     o.cfg.Typed,
			RESTConfig: o.cfg.RESTConfig,
			Writer:     o.cfg.Writer,
			Units:      o.cfg.NodeJournalUnits,
		}})
	}

	resourceLists, err := o.cfg.Discovery.ServerPreferredResources()
	if err != nil {
		if !discovery.IsGroupDiscoveryFailedError(err) {
			return nil, err
		}
		log.Error(err, "partial discovery failure, continuing with what succeeded")
	}

	for _, rl := range resourceLists {
		gv, err := schema.ParseGroupVersion(rl.GroupVersion)
		if err != nil {
			log.Error(err, "skipping unparsable discovery group", "groupVersion", rl.GroupVersion)
			continue
		}
		for _, res := range rl.APIResources {
			if !hasVerb(res, "list") {
				continue
			}
			g := gvk.GVK{Group: gv.Group, Version: gv.Version, Kind: res.Kind}
			if o.cfg.Filters != nil && !o.cfg.Filters.AcceptAPI(g) {
				continue
			}
			gvr := schema.GroupVersionResource{Group: gv.Group, Version: gv.Version, Resource: res.Name}
			collectors = append(collectors, o.classify(g, gvr)...)
		}
	}

	return collectors, nil
}

// classify maps one discovered resource to its collector tuple: the
// core Event and Pod kinds get extra log/event collectors layered on
// top of the generic object collector every kind receives.
func (o *Orchestrator) classify(g gvk.GVK, gvr schema.GroupVersionResource) []namedCollector {
	generic := namedCollector{g.String(), &collect.Generic{
		GVK:       g,
		GVR:       gvr,
		Client:    o.cfg.Dynamic,
		Filters:   o.cfg.Filters,
		Writer:    o.cfg.Writer,
		Namespace: o.cfg.Namespace,
	}}

	switch {
	case g.Group == "" && g.Kind == "Event":
		return []namedCollector{
			{g.String() + "/events", &collect.Events{Client: o.cfg.Typed, Writer: o.cfg.Writer}},
			generic,
		}
	case g.Group == "" && g.Kind == "Pod":
		return []namedCollector{
			{g.String() + "/logs-current", &collect.Logs{
				Group: archivepath.Current, Client: o.cfg.Typed, Filters: o.cfg.Filters,
				Writer: o.cfg.Writer, Namespace: o.cfg.Namespace,
			}},
			{g.String() + "/logs-previous", &collect.Logs{
				Group: archivepath.Previous, Client: o.cfg.Typed, Filters: o.cfg.Filters,
				Writer: o.cfg.Writer, Namespace: o.cfg.Namespace,
			}},
			generic,
		}
	default:
		return []namedCollector{generic}
	}
}

func hasVerb(res metav1.APIResource, verb string) bool {
	for _, v := range res.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// Package commons wires the fields shared between the collect and
// collect-from-config subcommands: one Config struct, built either
// from flags or from a YAML file with the same field names, and one
// RunCollect that turns it into a running Orchestrator.
package commons

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/filter"
	"github.com/crust-gather/kubesnap/pkg/orchestrator"
	"github.com/crust-gather/kubesnap/pkg/version"
	"github.com/crust-gather/kubesnap/pkg/writer"
	"github.com/crust-gather/kubesnap/pkg/writer/dirwriter"
	"github.com/crust-gather/kubesnap/pkg/writer/ociwriter"
	"github.com/crust-gather/kubesnap/pkg/writer/targz"
	"github.com/crust-gather/kubesnap/pkg/writer/zipwriter"
)

// Config is the collect subcommand's parameter set, shared verbatim
// (field-for-field) between --flag form and --config YAML form.
type Config struct {
	IncludeNamespace []string `yaml:"include_namespace"`
	ExcludeNamespace []string `yaml:"exclude_namespace"`
	IncludeKind      []string `yaml:"include_kind"`
	ExcludeKind      []string `yaml:"exclude_kind"`
	IncludeGroup     []string `yaml:"include_group"`
	ExcludeGroup     []string `yaml:"exclude_group"`
	Kubeconfig       string   `yaml:"kubeconfig"`
	File             string   `yaml:"file"`
	Encoding         string   `yaml:"encoding"`
	Secret           []string `yaml:"secret"`

	NodeJournal      bool     `yaml:"node_journal"`
	NodeJournalUnits []string `yaml:"node_journal_units"`
	Namespace        string   `yaml:"namespace"`
}

// ErrFatalf prints a diagnostic to stderr and exits non-zero, matching
// the CLI surface's "exit code 0 on success, non-zero with a
// diagnostic on failure" contract.
func ErrFatalf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// NewLogger builds the ambient logr.Logger every subcommand logs
// through: a production zap core wrapped by zapr, matching the
// zapr/zap pairing the teacher's own controllers use. It also bridges
// klog to the same logger, exactly as the teacher's cmd/manager/main.go
// does, since client-go logs through klog internally.
func NewLogger() (logr.Logger, func()) {
	z, err := zap.NewProduction()
	if err != nil {
		ErrFatalf("building logger: %v", err)
	}
	logger := zapr.NewLogger(z)
	klog.SetLogger(logger)
	return logger, func() { _ = z.Sync() }
}

// buildFilters compiles cfg's six include/exclude pattern lists into
// one filter.Set.
func buildFilters(cfg Config) (*filter.Set, error) {
	var exprs []filter.Expression
	add := func(patterns []string, exclude bool, build func(string, bool) (filter.Expression, error)) error {
		for _, p := range patterns {
			e, err := build(p, exclude)
			if err != nil {
				return err
			}
			exprs = append(exprs, e)
		}
		return nil
	}
	if err := add(cfg.IncludeNamespace, false, filter.NewNamespace); err != nil {
		return nil, err
	}
	if err := add(cfg.ExcludeNamespace, true, filter.NewNamespace); err != nil {
		return nil, err
	}
	if err := add(cfg.IncludeKind, false, filter.NewKind); err != nil {
		return nil, err
	}
	if err := add(cfg.ExcludeKind, true, filter.NewKind); err != nil {
		return nil, err
	}
	if err := add(cfg.IncludeGroup, false, filter.NewGroup); err != nil {
		return nil, err
	}
	if err := add(cfg.ExcludeGroup, true, filter.NewGroup); err != nil {
		return nil, err
	}
	return filter.New(exprs...), nil
}

// buildBackend opens the archive Writer backend cfg.Encoding names at
// cfg.File ("oci" takes cfg.File itself as the registry reference).
func buildBackend(cfg Config) (writer.Backend, error) {
	switch cfg.Encoding {
	case "", "path":
		return dirwriter.New(cfg.File)
	case "gzip":
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("%w: creating %q: %v", apierrors.ErrConfig, cfg.File, err)
		}
		return targz.New(f), nil
	case "zip":
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("%w: creating %q: %v", apierrors.ErrConfig, cfg.File, err)
		}
		return zipwriter.New(f), nil
	case "oci":
		return ociwriter.New(cfg.File)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", apierrors.ErrConfig, cfg.Encoding)
	}
}

// RunCollect builds every Kubernetes client and archive writer cfg
// names, then drives one Orchestrator run to completion.
func RunCollect(ctx context.Context, cfg Config) error {
	log, sync := NewLogger()
	defer sync()

	if cfg.Kubeconfig != "" {
		// config.GetConfig's clientcmd loading rules honour KUBECONFIG,
		// so an explicit --kubeconfig overrides it the same way the
		// environment variable would.
		if err := os.Setenv("KUBECONFIG", cfg.Kubeconfig); err != nil {
			return fmt.Errorf("%w: setting KUBECONFIG: %v", apierrors.ErrConfig, err)
		}
	}
	restCfg, err := ctrlconfig.GetConfig()
	if err != nil {
		return fmt.Errorf("%w: loading kubeconfig: %v", apierrors.ErrConfig, err)
	}
	restCfg.UserAgent = version.GetUserAgent()

	typed, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("%w: building clientset: %v", apierrors.ErrConfig, err)
	}
	dyn, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("%w: building dynamic client: %v", apierrors.ErrConfig, err)
	}

	filters, err := buildFilters(cfg)
	if err != nil {
		return err
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}
	w := writer.New(backend, cfg.Secret...)

	o := orchestrator.New(orchestrator.Config{
		RESTConfig:        restCfg,
		Dynamic:           dyn,
		Typed:             typed,
		Discovery:         typed.Discovery(),
		Writer:            w,
		Filters:           filters,
		Namespace:         cfg.Namespace,
		EnableNodeJournal: cfg.NodeJournal,
		NodeJournalUnits:  cfg.NodeJournalUnits,
		Log:               log,
	})

	return o.Run(ctx)
}

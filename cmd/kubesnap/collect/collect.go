// Package collect implements the collect subcommand: build a
// commons.Config from flags and run one collection pass against the
// cluster addressed by --kubeconfig (or $KUBECONFIG).
package collect

import (
	"github.com/spf13/cobra"

	"github.com/crust-gather/kubesnap/cmd/kubesnap/commons"
)

// Cmd is the "kubesnap collect" subcommand.
var Cmd = &cobra.Command{
	Use:   "collect",
	Short: "Capture a point-in-time snapshot of a Kubernetes cluster into an archive",
	RunE:  run,
}

var cfg commons.Config

func init() {
	Cmd.Flags().StringArrayVar(&cfg.IncludeNamespace, "include-namespace", nil,
		"regex matching namespaces to include; repeatable")
	Cmd.Flags().StringArrayVar(&cfg.ExcludeNamespace, "exclude-namespace", nil,
		"regex matching namespaces to exclude; repeatable")
	Cmd.Flags().StringArrayVar(&cfg.IncludeKind, "include-kind", nil,
		"regex matching kinds to include; repeatable")
	Cmd.Flags().StringArrayVar(&cfg.ExcludeKind, "exclude-kind", nil,
		"regex matching kinds to exclude; repeatable")
	Cmd.Flags().StringArrayVar(&cfg.IncludeGroup, "include-group", nil,
		"\"group/kind\" spec matching API groups to include; repeatable")
	Cmd.Flags().StringArrayVar(&cfg.ExcludeGroup, "exclude-group", nil,
		"\"group/kind\" spec matching API groups to exclude; repeatable")
	Cmd.Flags().StringVar(&cfg.Kubeconfig, "kubeconfig", "",
		"path to a kubeconfig file; defaults to $KUBECONFIG")
	Cmd.Flags().StringVar(&cfg.File, "file", "snapshot",
		"archive output path")
	Cmd.Flags().StringVar(&cfg.Encoding, "encoding", "path",
		"archive encoding: gzip, zip, path, or oci")
	Cmd.Flags().StringArrayVar(&cfg.Secret, "secret", nil,
		"environment variable whose value is redacted from collected output; repeatable")
	Cmd.Flags().StringVar(&cfg.Namespace, "namespace", "",
		"restrict collection to a single namespace")
	Cmd.Flags().BoolVar(&cfg.NodeJournal, "node-journal", false,
		"collect kubelet and systemd journal logs via an ephemeral debug pod per node")
	Cmd.Flags().StringArrayVar(&cfg.NodeJournalUnits, "node-journal-unit", nil,
		"systemd unit to capture with --node-journal; repeatable")
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return commons.RunCollect(cmd.Context(), cfg)
}

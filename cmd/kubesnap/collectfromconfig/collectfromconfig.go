// Package collectfromconfig implements the collect-from-config
// subcommand: decode a commons.Config from a YAML file and run one
// collection pass, rejecting any field the config struct doesn't
// recognise.
package collectfromconfig

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crust-gather/kubesnap/cmd/kubesnap/commons"
	"github.com/crust-gather/kubesnap/pkg/apierrors"
)

// Cmd is the "kubesnap collect-from-config" subcommand.
var Cmd = &cobra.Command{
	Use:   "collect-from-config",
	Short: "Capture a snapshot using a collect config loaded from a YAML file",
	RunE:  run,
}

var flagConfig string

func init() {
	Cmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML collect config file")
	_ = Cmd.MarkFlagRequired("config")
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	f, err := os.Open(flagConfig)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %v", apierrors.ErrConfig, flagConfig, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg commons.Config
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("%w: decoding %q: %v", apierrors.ErrConfig, flagConfig, err)
	}

	return commons.RunCollect(cmd.Context(), cfg)
}

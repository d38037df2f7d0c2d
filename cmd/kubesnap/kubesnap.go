package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crust-gather/kubesnap/cmd/kubesnap/collect"
	"github.com/crust-gather/kubesnap/cmd/kubesnap/collectfromconfig"
	"github.com/crust-gather/kubesnap/cmd/kubesnap/serve"
)

const version = "alpha"

func init() {
	rootCmd.AddCommand(collect.Cmd, collectfromconfig.Cmd, serve.Cmd)
}

var rootCmd = &cobra.Command{
	Use:     "kubesnap subcommand",
	Short:   "kubesnap snapshots a Kubernetes cluster's state and replays it as a read-only API server",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

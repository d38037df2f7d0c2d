// Package serve implements the serve subcommand: open a collected
// archive and replay it over HTTP, writing a kubeconfig a caller can
// point kubectl at.
package serve

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crust-gather/kubesnap/cmd/kubesnap/commons"
	"github.com/crust-gather/kubesnap/pkg/apierrors"
	"github.com/crust-gather/kubesnap/pkg/reader"
	"github.com/crust-gather/kubesnap/pkg/replayserver"
)

// Cmd is the "kubesnap serve" subcommand.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a collected archive back as a read-only Kubernetes API replay",
	RunE:  run,
}

var (
	flagArchive    string
	flagSocket     string
	flagKubeconfig string
)

func init() {
	Cmd.Flags().StringVar(&flagArchive, "archive", "", "path to the archive, or oci://ref for an OCI-backed archive")
	Cmd.Flags().StringVar(&flagSocket, "socket", "127.0.0.1:8080", "address to bind the replay server to")
	Cmd.Flags().StringVar(&flagKubeconfig, "kubeconfig", "", "path to write the generated kubeconfig; defaults to $KUBECONFIG")
	_ = Cmd.MarkFlagRequired("archive")
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	log, sync := commons.NewLogger()
	defer sync()

	r, err := openArchive(flagArchive)
	if err != nil {
		return err
	}
	defer r.Close()

	kubeconfigPath := flagKubeconfig
	if kubeconfigPath == "" {
		kubeconfigPath = os.Getenv("KUBECONFIG")
	}
	if kubeconfigPath == "" {
		return fmt.Errorf("%w: --kubeconfig not set and $KUBECONFIG is empty", apierrors.ErrConfig)
	}
	if err := replayserver.WriteKubeconfig(kubeconfigPath, flagSocket); err != nil {
		return fmt.Errorf("%w: writing kubeconfig: %v", apierrors.ErrConfig, err)
	}

	srv := replayserver.New().
		WithReader(r).
		WithAddresses([]string{flagSocket}).
		WithLog(log).
		Init()

	loops, err := srv.Listeners()
	if err != nil {
		return err
	}

	grp, _ := errgroup.WithContext(cmd.Context())
	for _, loop := range loops {
		loop := loop
		grp.Go(func() error { return loop() })
	}
	return grp.Wait()
}

func openArchive(path string) (*reader.Reader, error) {
	if strings.HasPrefix(path, "oci://") {
		r, err := reader.OpenOCI(strings.TrimPrefix(path, "oci://"))
		if err != nil {
			return nil, errors.Join(apierrors.ErrConfig, err)
		}
		return r, nil
	}
	r, err := reader.Open(path)
	if err != nil {
		return nil, errors.Join(apierrors.ErrConfig, err)
	}
	return r, nil
}

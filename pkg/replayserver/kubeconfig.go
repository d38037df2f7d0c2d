package replayserver

import (
	"fmt"
	"net/url"

	"k8s.io/client-go/tools/clientcmd"
	kcapi "k8s.io/client-go/tools/clientcmd/api"
)

// snapshotContext is the context name WriteKubeconfig registers, the
// integration point a user points "kubectl --context snapshot" at.
const snapshotContext = "snapshot"

// WriteKubeconfig writes a minimal kubeconfig to path pointing at addr
// under context "snapshot", unauthenticated, matching this server's
// plain-HTTP, no-auth contract.
func WriteKubeconfig(path, addr string) error {
	u, err := parseURL(addr)
	if err != nil {
		return fmt.Errorf("parsing bind address %q: %w", addr, err)
	}
	server := (&url.URL{Scheme: "http", Host: u.Host}).String()

	cfg := kcapi.NewConfig()
	cfg.Clusters[snapshotContext] = &kcapi.Cluster{Server: server}
	cfg.AuthInfos[snapshotContext] = &kcapi.AuthInfo{}
	ctx := kcapi.NewContext()
	ctx.Cluster = snapshotContext
	ctx.AuthInfo = snapshotContext
	cfg.Contexts[snapshotContext] = ctx
	cfg.CurrentContext = snapshotContext

	return clientcmd.WriteToFile(*cfg, path)
}

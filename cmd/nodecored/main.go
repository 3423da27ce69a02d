// nodecored is the node-side control daemon: it reconciles a fleet of
// tenant game servers against the panel's authoritative records and runs
// their lifecycles against the local container runtime.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gameforge/nodecore/internal/config"
	"github.com/gameforge/nodecore/internal/manager"
	"github.com/gameforge/nodecore/internal/runtime"
	"github.com/gameforge/nodecore/pkg/client"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Printf("nodecored %s starting", version)

	cfg := config.Load()

	rt, err := runtime.NewCLIRuntime("docker")
	if err != nil {
		log.Fatalf("nodecored: failed to init container runtime: %v", err)
	}

	remote := client.New(client.Config{
		RemoteURL:          cfg.RemoteURL,
		TokenID:            cfg.TokenID,
		Token:              cfg.Token,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})

	servers, err := remote.FetchAllServers(context.Background())
	if err != nil {
		log.Fatalf("nodecored: failed to fetch servers from remote: %v", err)
	}

	mgr := manager.New(cfg, rt, servers)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	log.Printf("nodecored: received %v, shutting down", sig)
	mgr.Close()
}

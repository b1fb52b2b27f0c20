// Package httpd implements the httpd subcommand: serve the HTTP API.
package httpd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/api"
)

// shutdownTimeout bounds graceful shutdown after an interrupt.
const shutdownTimeout = 10 * time.Second

// Command builds the httpd subcommand.
func Command(deps *common.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the corpus-building HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps *common.Deps) error {
	store, err := deps.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := api.NewServer(&deps.Config.Server, deps.Logger, store, nil)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Stop(shutdownCtx)
}

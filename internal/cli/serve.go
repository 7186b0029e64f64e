package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zephyraoss/offline-finder/internal/api"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	var listen string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			d, err := f.build(c.OutOrStdout())
			if err != nil {
				return err
			}
			if listen != "" {
				d.cfg.ListenAddr = listen
			}
			ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, d)
		},
	}
	c.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, :8080)")
	return c
}

// serve runs the API until ctx is cancelled, then shuts down gracefully and
// releases the database handle.
func serve(ctx context.Context, d *deps) error {
	logger := d.logger
	logger.Info("starting offlinefinder", "listen_addr", d.cfg.ListenAddr, "db_path", d.resolver.Resolve(), "max_page_size", d.cfg.MaxPageSize, "metrics", d.cfg.Metrics)
	defer d.provider.Close()

	opts := api.Options{MaxPageSize: int64(d.cfg.MaxPageSize)}
	if d.prom != nil {
		opts.Metrics = d.prom
		opts.MetricsHandler = d.prom.Handler()
	}
	app := api.New(d.searcher, d.provider, logger, opts)

	// Open eagerly so a missing file shows up in the log at startup. Requests
	// retry on their own if this fails.
	if err := d.provider.EnsureOpen(ctx); err != nil {
		logger.Warn("database not ready", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting api server")
		errCh <- app.Listen(d.cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", d.cfg.ListenAddr, err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
	defer shutdownCancel()
	logger.Info("shutting down api server")
	return app.ShutdownWithContext(shutdownCtx)
}

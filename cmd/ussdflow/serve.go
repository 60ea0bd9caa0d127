package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/ussdflow"
	"github.com/aretw0/ussdflow/internal/cli"
	"github.com/aretw0/ussdflow/internal/presentation/tui"
	catalogHTTP "github.com/aretw0/ussdflow/pkg/adapters/http"
	"github.com/aretw0/ussdflow/pkg/observability"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured catalog over HTTP",
	Long: `Exposes the configured flow catalog as a JSON API (create-flow, fetch-all,
fetch-by-name) so that other workspaces can use it with the http catalog
backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		level, _ := cfg.Level()
		quiet, _ := cmd.Flags().GetBool("quiet")
		logger := cli.NewLogger(level, quiet)

		app, err := cli.NewApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []catalogHTTP.Option{catalogHTTP.WithLogger(logger)}
		if cfg.HTTP.Metrics {
			opts = append(opts,
				catalogHTTP.WithMiddleware(app.Metrics.Middleware),
				catalogHTTP.WithMetrics(observability.Handler(app.Registry)),
			)
		}
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           catalogHTTP.NewHandler(app.Catalog, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), ussdflow.Version)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting catalog server", "addr", srv.Addr, "backend", cfg.Catalog.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("Catalog server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/waypoint/internal/presentation/report"
	httpadapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Host the workflow as an HTTP session server",
		Long: `Starts an HTTP server hosting sessions of the workflow. Invocations are held
open until a client resolves or rejects them, which makes the server a target
for 'waypoint run'. Prometheus metrics are exposed at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			wf, logger, err := load(cmd, args[0])
			if err != nil {
				return err
			}

			collector := metrics.New(metrics.WithProcessMetrics())
			server := httpadapter.NewServer(wf.Definition,
				httpadapter.WithLogger(logger),
				httpadapter.WithLifecycleHooks(collector.Hooks()),
				httpadapter.WithMetricsHandler(collector.Handler()),
			)
			defer server.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			out := cmd.OutOrStdout()
			if isTerminal(out) {
				report.PrintBanner(out)
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				fmt.Fprintf(out, "Serving workflow %q on %s\n", wf.Definition.ID(), srv.Addr)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				logger.Info("shutting down", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("failed to stop server: %w", err)
					}
				}
				fmt.Fprintln(out, "Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	return cmd
}

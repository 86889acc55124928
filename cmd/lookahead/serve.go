package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/lookahead/internal/cli"
	httpAdapter "github.com/aretw0/lookahead/pkg/adapters/http"
	"github.com/aretw0/lookahead/pkg/fleet"
	"github.com/aretw0/lookahead/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Loads the scenario and exposes its merchants over a JSON API: plans, steps,
lookahead trees, price updates, a Server-Sent Events stream of state changes
and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		opts := optionsFrom(cmd)

		f, closer, reg, err := newFleet(opts)
		if err != nil {
			return err
		}
		defer closer.Close()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(f, httpAdapter.WithMetrics(reg), httpAdapter.WithLogger(logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting lookahead server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving scenario: %s\n", opts.ScenarioPath)
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

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "lookahead server stopped gracefully")
		}
		return nil
	},
}

// newFleet builds the shared fleet behind the serve and mcp commands, with
// planning metrics registered on a fresh registry.
func newFleet(opts cli.Options) (*fleet.Fleet, io.Closer, *prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, nil, err
	}

	setup, err := cli.Prepare(opts, metrics.Hooks())
	if err != nil {
		return nil, nil, nil, err
	}
	sessions, closer, err := cli.OpenSessions(opts.Store, setup.Logger)
	if err != nil {
		return nil, nil, nil, err
	}

	f := fleet.New(setup.World, sessions,
		fleet.WithEngine(setup.Engine),
		fleet.WithSelector(setup.Selector),
		fleet.WithLogger(setup.Logger),
		fleet.WithLifecycleHooks(setup.Hooks),
	)
	return f, closer, reg, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}

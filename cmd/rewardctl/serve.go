package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rizome-dev/go-rewards/pkg/rewards"
	"github.com/rizome-dev/go-rewards/pkg/server"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rewards over HTTP",
		Long: `Serve exposes POST /v1/rewards, GET /healthz and GET /metrics.
The request body carries aligned "completions", "golds" and "languages"
arrays and an optional "scorers" list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := rewards.NewMetrics(reg)
			if err != nil {
				return err
			}

			pipeline, err := a.pipeline(metrics)
			if err != nil {
				return err
			}

			srv := server.NewHTTPServer(pipeline, server.Options{
				Addr:         addr,
				MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
				Logger:       a.logger.With("component", "server"),
				Gatherer:     reg,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", srv.Addr, "scorers", pipeline.RewardSet().Names())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/delta"
	"github.com/nbittich/mu-search/observability"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the indexing control plane",
		Long: `serve starts the delta ingress, the update handler, the eager
reconciliation loop and the metrics endpoint, and blocks until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}

func runServe(parentCtx context.Context) error {
	setupLogging(debugLogging)
	log := observability.Component("SERVER")

	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(configPath)
	if err != nil {
		return err
	}

	if err := a.manager.Initialize(ctx); err != nil {
		return err
	}

	go a.manager.RunReconciliation(ctx)
	go delta.RunConsumer(ctx, a.queue, a.dispatcher)

	if err := config.Watch(ctx, configPath, func(*config.Config) {
		log.Warn("configuration changed on disk; mapping and routing changes require a restart")
	}); err != nil {
		log.Warn("configuration watch disabled", "error", err)
	}

	var deltaSrv, metricsSrv *http.Server
	if a.cfg.DeltaListenAddress != "" {
		deltaSrv = &http.Server{Addr: a.cfg.DeltaListenAddress, Handler: delta.Handler(a.queue)}
		go serveUntilClosed(deltaSrv, "delta ingress")
	}
	if a.cfg.MetricsListenAddress != "" {
		metricsSrv = &http.Server{Addr: a.cfg.MetricsListenAddress, Handler: observability.MetricsHandler(observability.Registry())}
		go serveUntilClosed(metricsSrv, "metrics")
	}

	<-ctx.Done()
	log.Info("shutdown requested, draining outstanding work")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if deltaSrv != nil {
		_ = deltaSrv.Shutdown(shutdownCtx)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	delta.Drain(shutdownCtx, a.queue)
	a.updates.Drain(shutdownCtx)

	log.Info("shutdown complete")
	return nil
}

func serveUntilClosed(srv *http.Server, name string) {
	log := observability.Component("SERVER")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("listener stopped unexpectedly", "server", name, "error", err)
	}
}

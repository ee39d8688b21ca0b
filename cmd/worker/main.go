package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/quote-assistant/internal/bootstrap"
	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/observability/logging"
	"github.com/kirillkom/quote-assistant/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	observer := metrics.NewPipelineMetrics(serviceName, workerMetrics.Registry())

	worker, err := bootstrap.NewWorker(ctx, cfg, observer)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer worker.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = worker.Queue.SubscribeQuoteGenerated(ctx, func(handlerCtx context.Context, event domain.QuoteGeneratedEvent) error {
		done := workerMetrics.TrackRefresh(event.OccurredAt())

		refreshCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
		defer cancel()
		err := worker.RefreshUC.Refresh(refreshCtx, event)
		done(err)
		if err != nil {
			return err
		}
		slog.Info("benchmark_refreshed", "quote_id", event.QuoteID, "category", event.Category, "accepted", event.AcceptedAt != nil)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

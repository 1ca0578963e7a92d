package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anishkhadka/vaultflex/internal/bootstrap"
	"github.com/anishkhadka/vaultflex/internal/config"
	"github.com/anishkhadka/vaultflex/internal/observability/logging"
	"github.com/anishkhadka/vaultflex/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	log := logging.NewJSONLogger("worker", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker metrics server error", "error", err)
		}
	}()

	processTimeout := time.Duration(cfg.WorkerProcessTimeoutSeconds) * time.Second

	log.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		report, err := app.ProcessUC.ProcessByID(processCtx, documentID)

		status := "error"
		if err == nil {
			status = string(report.Status())
			log.Info("document processed",
				"document_id", documentID,
				"status", status,
				"chunks", report.ChunkCount,
				"triples", report.TripleCount,
			)
		}
		workerMetrics.FinishDocument("worker", status, time.Since(start))
		return err
	})
	if err != nil {
		log.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

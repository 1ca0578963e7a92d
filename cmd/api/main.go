package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/anishkhadka/vaultflex/internal/adapters/http"
	"github.com/anishkhadka/vaultflex/internal/bootstrap"
	"github.com/anishkhadka/vaultflex/internal/config"
	"github.com/anishkhadka/vaultflex/internal/observability/logging"
	"github.com/anishkhadka/vaultflex/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	log := logging.NewJSONLogger("api", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.ScopeUC,
		app.IngestUC,
		app.Documents,
		app.RetrieveUC,
		httpadapter.Options{
			ServiceName:    "api",
			RateLimitRPS:   float64(cfg.APIRateLimitRPS),
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
			Metrics:        httpMetrics,
		},
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown error", "error", err)
	}
}

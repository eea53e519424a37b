package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopguide/shopguide-ai-platform/cmd/mainconfig"
	"github.com/shopguide/shopguide-ai-platform/internal/api/router"
	"github.com/shopguide/shopguide-ai-platform/internal/app/bootstrap"
	appconfig "github.com/shopguide/shopguide-ai-platform/internal/config"
	"github.com/shopguide/shopguide-ai-platform/internal/dialogue"
	"github.com/shopguide/shopguide-ai-platform/internal/observability/metrics"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

func main() {
	// Best effort .env load for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting shopguide-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dialogueMetrics := metrics.NewDialogueMetrics(prometheus.DefaultRegisterer)

	engine, err := bootstrap.BuildEngine(ctx, cfg, awsCfg, logger, dialogueMetrics)
	if err != nil {
		logger.Error("failed to build dialogue engine", "error", err)
		os.Exit(1)
	}

	var service dialogue.Service = engine
	var orchestrator *dialogue.Orchestrator
	if cfg.UseMemoryQueue {
		orchestrator = dialogue.NewOrchestrator(
			engine,
			dialogue.NewMemoryQueue(0),
			logger,
			dialogue.WithWorkerCount(cfg.WorkerCount),
		)
		service = orchestrator
	} else if cfg.TurnQueueURL != "" {
		orchestrator = dialogue.NewOrchestrator(
			engine,
			mainconfig.BuildTurnQueue(awsCfg, cfg),
			logger,
			dialogue.WithWorkerCount(cfg.WorkerCount),
		)
		service = orchestrator
	}

	dialogueHandler := dialogue.NewHandler(service, logger,
		dialogue.WithTranscripts(engine.Transcripts()))

	routerCfg := &router.Config{
		Logger:             logger,
		DialogueHandler:    dialogueHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if orchestrator != nil {
		if err := orchestrator.Shutdown(shutdownCtx); err != nil {
			logger.Error("orchestrator shutdown failed", "error", err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

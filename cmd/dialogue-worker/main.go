package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopguide/shopguide-ai-platform/cmd/mainconfig"
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
	logger.Info("starting shopguide dialogue worker")

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	if cfg.TurnQueueURL == "" {
		logger.Error("TURN_QUEUE_URL is required for the dialogue worker")
		os.Exit(1)
	}

	dialogueMetrics := metrics.NewDialogueMetrics(prometheus.DefaultRegisterer)

	engine, err := bootstrap.BuildEngine(ctx, cfg, awsCfg, logger, dialogueMetrics)
	if err != nil {
		logger.Error("failed to build dialogue engine", "error", err)
		os.Exit(1)
	}

	// The orchestrator's polling goroutines drain the queue; this binary
	// never enqueues, it only consumes.
	orchestrator := dialogue.NewOrchestrator(
		engine,
		mainconfig.BuildTurnQueue(awsCfg, cfg),
		logger,
		dialogue.WithWorkerCount(cfg.WorkerCount),
		dialogue.WithReceiveWaitSeconds(10),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down dialogue worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		logger.Error("dialogue worker shutdown timed out", "error", err)
		os.Exit(1)
	}

	logger.Info("dialogue worker stopped")
}

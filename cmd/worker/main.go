package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"apartment_app_echo/internal/app"
	"apartment_app_echo/internal/config"
	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/tasks"
)

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if _, err := tasks.EnsureDefaultSchedules(ctx, application.DB, time.Now().UTC()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default schedules")
	}

	runner := tasks.NewRunner(application.DB, tasks.DefaultRegistry(), application.TaskEnv())

	log.Info().Dur("interval", cfg.WorkerInterval).Msg("Worker started")

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	// one pass at startup, then on every tick
	process(ctx, runner)
	for {
		select {
		case <-ticker.C:
			process(ctx, runner)
		case <-ctx.Done():
			log.Info().Msg("Shutting down worker...")
			return
		}
	}
}

func process(ctx context.Context, runner *tasks.Runner) {
	summary, err := runner.RunDue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error processing scheduled tasks")
		return
	}
	if summary.Processed > 0 {
		log.Info().
			Int("processed", summary.Processed).
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Msg("Processed scheduled tasks")
	}
}

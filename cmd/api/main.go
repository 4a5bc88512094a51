package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Jabramco/memebase/infrastructure/config"
	"github.com/Jabramco/memebase/infrastructure/di"
	"github.com/Jabramco/memebase/infrastructure/scheduler"
	"github.com/Jabramco/memebase/interfaces/http/rest"
	"github.com/Jabramco/memebase/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, level, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	container, err := di.NewContainer(ctx, cfg, logger, level)
	if err != nil {
		logger.Fatal("Failed to initialize container", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}
	cleanup, err := scheduler.New(cfg.CleanupSchedule, loc, container.Interactions, logger)
	if err != nil {
		logger.Fatal("Failed to create cleanup scheduler", zap.Error(err))
	}
	// Old weeks are pruned once at startup, then on schedule
	cleanup.RunNow(ctx)
	cleanup.Start()
	defer cleanup.Stop()

	if cfg.ConfigFile != "" {
		watcher, err := config.NewWatcher(cfg.ConfigFile, cfg, logger)
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			watcher.OnChange(func(next *config.Config) {
				level.SetLevel(observability.ParseLevel(next.LogLevel, level.Level()))
				if err := cleanup.Reschedule(next.CleanupSchedule); err != nil {
					logger.Error("Failed to reschedule cleanup",
						zap.String("schedule", next.CleanupSchedule),
						zap.Error(err),
					)
				}
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: rest.NewRouter(container).Setup(),
		// Bulk saves run one upload timeout per file
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

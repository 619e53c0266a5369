package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"slotnotify/internal/app"
	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
	"slotnotify/internal/infra/queue"

	"github.com/hibiken/asynq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("worker configuration loaded", "provider", cfg.Email.Provider)

	core, err := app.NewDispatch(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize dispatch core", "error", err)
		os.Exit(1)
	}

	notifWorker := notification.NewWorker(core.Dispatcher)

	// ==========================================
	// Asynq Server (task processing)
	// ==========================================

	asynqServer := queue.NewServer(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TaskTypeDispatch, notifWorker.ProcessTask)

	slog.Info("worker starting",
		"concurrency", cfg.Queue.Concurrency,
		"redis", cfg.Redis.Address,
	)
	if err := asynqServer.Start(mux); err != nil {
		slog.Error("worker failed to start", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	asynqServer.Shutdown()
	slog.Info("worker exited gracefully")
}

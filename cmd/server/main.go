package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotnotify/internal/app"
	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
	"slotnotify/internal/infra/queue"
	"slotnotify/internal/infra/ratelimit"
	"slotnotify/internal/router"
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

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode, "provider", cfg.Email.Provider)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	core, err := app.NewDispatch(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize dispatch core", "error", err)
		os.Exit(1)
	}

	// Asynq client, only when the worker is deployed alongside
	var enqueuer notification.Enqueuer
	if cfg.Queue.Enabled {
		asynqClient := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		defer asynqClient.Close()
		enqueuer = queue.NewEnqueuer(asynqClient, cfg.Queue.MaxRetry)
		slog.Info("asynq client initialized", "redis", cfg.Redis.Address)
	}

	// Recipient rate limiter
	var recipientLimiter notification.RecipientRateLimiter
	if cfg.RecipientRateLimit.MaxPerHour > 0 {
		limiter := ratelimit.NewRedisRecipientLimiter(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.RecipientRateLimit.MaxPerHour,
		)
		defer limiter.Close()
		recipientLimiter = limiter
		slog.Info("recipient rate limiter initialized", "max_per_hour", cfg.RecipientRateLimit.MaxPerHour)
	}

	notificationService := notification.NewService(core.Dispatcher, enqueuer, recipientLimiter, core.Mirror)

	r := router.New(cfg, notificationService)
	slog.Info("dispatch core ready", "provider", core.Provider.Name(), "mirror", core.Mirror != nil)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Dispatch.SendTimeout() + cfg.Dispatch.RenderTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
	"slotnotify/internal/infra/email"
	"slotnotify/internal/infra/store"
	"slotnotify/internal/infra/template"
)

// Dispatch bundles the dispatch core shared by the server and the worker.
type Dispatch struct {
	Dispatcher *notification.Dispatcher
	Mirror     notification.LogMirror
	Provider   notification.Provider
}

// NewDispatch wires renderer, provider, delivery log and the optional mirror.
func NewDispatch(ctx context.Context, cfg *config.Config) (*Dispatch, error) {
	engine, err := template.NewDirEngine(cfg.Templates.Dir, template.WithCSSInlining(cfg.Templates.InlineCSS))
	if err != nil {
		return nil, fmt.Errorf("initializing template engine: %w", err)
	}
	if cfg.Templates.Preload {
		if err := engine.Preload(ctx, notification.KnownTemplates()...); err != nil {
			return nil, fmt.Errorf("preloading templates: %w", err)
		}
	}
	slog.Info("template engine initialized", "dir", cfg.Templates.Dir, "preload", cfg.Templates.Preload)

	provider := email.New(cfg.Email)
	slog.Info("email provider selected", "provider", provider.Name())

	var mirror notification.LogMirror
	if cfg.Supabase.Enabled() {
		m, err := store.NewSupabaseLogMirror(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.Table)
		if err != nil {
			return nil, fmt.Errorf("initializing supabase mirror: %w", err)
		}
		mirror = m
		slog.Info("delivery log mirror initialized", "table", cfg.Supabase.Table)
	}

	dispatcher := notification.NewDispatcher(
		engine,
		provider,
		notification.NewDeliveryLog(cfg.Dispatch.LogCapacity),
		mirror,
		notification.DispatcherConfig{
			RenderTimeout: cfg.Dispatch.RenderTimeout(),
			SendTimeout:   cfg.Dispatch.SendTimeout(),
		},
	)

	return &Dispatch{
		Dispatcher: dispatcher,
		Mirror:     mirror,
		Provider:   provider,
	}, nil
}

package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DispatcherConfig holds the per-dispatch deadlines.
type DispatcherConfig struct {
	// RenderTimeout bounds template loading and execution.
	RenderTimeout time.Duration

	// SendTimeout bounds the provider call.
	SendTimeout time.Duration

	// MirrorTimeout bounds the best-effort durable copy of each entry.
	MirrorTimeout time.Duration
}

// Dispatcher runs one notification through render → send → record.
// Each call is a single synchronous attempt: no retry, no queue, no idempotency.
type Dispatcher struct {
	renderer TemplateRenderer
	provider Provider
	log      *DeliveryLog
	mirror   LogMirror
	config   DispatcherConfig
	now      func() time.Time
}

// NewDispatcher creates a dispatcher around a renderer, the single active provider and a log.
// mirror may be nil.
func NewDispatcher(renderer TemplateRenderer, provider Provider, log *DeliveryLog, mirror LogMirror, cfg DispatcherConfig) *Dispatcher {
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 5 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.MirrorTimeout <= 0 {
		cfg.MirrorTimeout = 5 * time.Second
	}
	if log == nil {
		log = NewDeliveryLog(DefaultLogCapacity)
	}

	return &Dispatcher{
		renderer: renderer,
		provider: provider,
		log:      log,
		mirror:   mirror,
		config:   cfg,
		now:      time.Now,
	}
}

// Log exposes the dispatcher's delivery log for inspection.
func (d *Dispatcher) Log() *DeliveryLog {
	return d.log
}

// ProviderName returns the name of the active provider.
func (d *Dispatcher) ProviderName() string {
	return d.provider.Name()
}

// SendNotification renders the named template, sends it through the active provider
// and records exactly one delivery log entry, whatever the outcome.
func (d *Dispatcher) SendNotification(ctx context.Context, req *Request) DispatchResult {
	start := d.now()

	subject := req.Subject
	if subject == "" {
		subject = req.Template.DefaultSubject()
	}

	entry := DeliveryLogEntry{
		ID:        uuid.NewString(),
		Recipient: req.To,
		Subject:   subject,
		Template:  req.Template,
		Provider:  d.provider.Name(),
	}

	data := make(map[string]any, len(req.Data)+1)
	for k, v := range req.Data {
		data[k] = v
	}
	if _, ok := data["subject"]; !ok {
		data["subject"] = subject
	}

	renderCtx, cancelRender := context.WithTimeout(ctx, d.config.RenderTimeout)
	rendered, err := d.renderer.Render(renderCtx, req.Template, data)
	cancelRender()
	if err != nil {
		return d.fail(ctx, entry, start, err)
	}

	msg := &Message{
		To:      req.To,
		Subject: subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	}

	sendCtx, cancelSend := context.WithTimeout(ctx, d.config.SendTimeout)
	messageID, err := d.provider.Send(sendCtx, msg)
	cancelSend()
	if err != nil {
		return d.fail(ctx, entry, start, err)
	}

	entry.Status = StatusSent
	entry.MessageID = messageID
	d.record(ctx, entry, start)

	slog.Info("notification sent",
		"log_id", entry.ID,
		"template", req.Template,
		"to", req.To,
		"provider", entry.Provider,
		"message_id", messageID,
		"duration", entry.Duration,
	)

	return DispatchResult{
		Success:   true,
		LogID:     entry.ID,
		MessageID: messageID,
	}
}

func (d *Dispatcher) fail(ctx context.Context, entry DeliveryLogEntry, start time.Time, err error) DispatchResult {
	entry.Status = StatusFailed
	entry.Error = err.Error()
	d.record(ctx, entry, start)

	slog.Error("notification dispatch failed",
		"log_id", entry.ID,
		"template", entry.Template,
		"to", entry.Recipient,
		"provider", entry.Provider,
		"error", err,
		"duration", entry.Duration,
	)

	return DispatchResult{
		Success: false,
		LogID:   entry.ID,
		Error:   err.Error(),
		Err:     err,
	}
}

func (d *Dispatcher) record(ctx context.Context, entry DeliveryLogEntry, start time.Time) {
	entry.Timestamp = d.now().UTC()
	entry.Duration = entry.Timestamp.Sub(start.UTC())
	d.log.Record(entry)

	if d.mirror == nil {
		return
	}

	// The caller's deadline may already be spent on a slow send.
	mirrorCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.config.MirrorTimeout)
	defer cancel()
	if err := d.mirror.Save(mirrorCtx, entry); err != nil {
		slog.Warn("failed to mirror delivery log entry", "log_id", entry.ID, "error", err)
	}
}

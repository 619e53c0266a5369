package notification

import (
	"context"
	"fmt"
	"log/slog"

	"slotnotify/internal/common"
)

// Enqueuer defines the contract for handing a dispatch to the background queue.
// This allows the service to be decoupled from the specific queue implementation.
type Enqueuer interface {
	EnqueueDispatch(ctx context.Context, req *Request) (taskID string, err error)
}

// Service is the entry point used by the HTTP layer.
// It applies the recipient limit, then either dispatches inline or enqueues.
type Service struct {
	dispatcher  *Dispatcher
	enqueuer    Enqueuer
	rateLimiter RecipientRateLimiter
	mirror      LogMirror
}

// NewService creates a new notification service. enqueuer, rateLimiter and mirror may be nil.
func NewService(dispatcher *Dispatcher, enqueuer Enqueuer, rateLimiter RecipientRateLimiter, mirror LogMirror) *Service {
	return &Service{
		dispatcher:  dispatcher,
		enqueuer:    enqueuer,
		rateLimiter: rateLimiter,
		mirror:      mirror,
	}
}

// Send dispatches a notification synchronously.
// A non-nil error means no attempt was made; attempt failures are reported in the result.
func (s *Service) Send(ctx context.Context, req *Request) (*DispatchResult, error) {
	if err := s.checkRecipient(ctx, req.To); err != nil {
		return nil, err
	}

	result := s.dispatcher.SendNotification(ctx, req)
	return &result, nil
}

// Enqueue validates the request and hands it to the queue for the worker to dispatch.
func (s *Service) Enqueue(ctx context.Context, req *Request) (*EnqueueResponse, error) {
	if s.enqueuer == nil {
		return nil, common.NewValidationError("async dispatch is not enabled")
	}

	// Unknown templates would only fail on every retry in the worker.
	if !req.Template.IsKnown() {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported template: %s", req.Template))
	}

	if err := s.checkRecipient(ctx, req.To); err != nil {
		return nil, err
	}

	taskID, err := s.enqueuer.EnqueueDispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("enqueuing notification: %w", err)
	}

	slog.Info("notification enqueued",
		"task_id", taskID,
		"template", req.Template,
		"to", req.To,
	)

	return &EnqueueResponse{
		TaskID:   taskID,
		Template: req.Template,
		To:       req.To,
		Status:   "queued",
	}, nil
}

// Deliveries returns the most recent in-process delivery log entries.
func (s *Service) Deliveries(limit int) *DeliveriesResponse {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	log := s.dispatcher.Log()
	entries := log.Query(limit)
	return &DeliveriesResponse{
		Entries:  entries,
		Count:    len(entries),
		Limit:    limit,
		Retained: log.Len(),
		Recorded: log.Recorded(),
	}
}

// History returns entries from the durable mirror, newest first.
func (s *Service) History(ctx context.Context, limit int) (*DeliveriesResponse, error) {
	if s.mirror == nil {
		return nil, common.NewNotFoundError("delivery history", "mirror")
	}
	if limit <= 0 || limit > 500 {
		limit = DefaultQueryLimit
	}

	entries, err := s.mirror.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing delivery history: %w", err)
	}

	return &DeliveriesResponse{
		Entries: entries,
		Count:   len(entries),
		Limit:   limit,
	}, nil
}

// ProviderName returns the name of the active provider.
func (s *Service) ProviderName() string {
	return s.dispatcher.ProviderName()
}

func (s *Service) checkRecipient(ctx context.Context, recipient string) error {
	if s.rateLimiter == nil {
		return nil
	}

	allowed, err := s.rateLimiter.Allow(ctx, recipient)
	if err != nil {
		// Fail open: a Redis outage must not block sends
		slog.Error("rate limit check failed, proceeding without limit", "recipient", recipient, "error", err)
		return nil
	}
	if !allowed {
		return common.NewRateLimitError(recipient)
	}
	return nil
}

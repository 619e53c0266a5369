package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"slotnotify/internal/common"

	"github.com/hibiken/asynq"
)

// Worker processes dispatch tasks from the queue.
// Each task attempt is one Dispatcher call, so each attempt leaves one log entry.
// Retrying is the queue's job; the Dispatcher never retries.
type Worker struct {
	dispatcher *Dispatcher
}

// NewWorker creates a new notification worker.
func NewWorker(dispatcher *Dispatcher) *Worker {
	return &Worker{dispatcher: dispatcher}
}

// ProcessTask handles a dispatch task from the queue.
// Failures that cannot succeed on retry are wrapped with asynq.SkipRetry.
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	req, err := ParseDispatchPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result := w.dispatcher.SendNotification(ctx, req)
	if result.Success {
		return nil
	}

	if !IsRetryable(result.Err) {
		slog.Warn("dropping notification task without retry",
			"log_id", result.LogID,
			"template", req.Template,
			"to", req.To,
			"error", result.Error,
		)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, result.Err)
	}

	return result.Err
}

// IsRetryable reports whether a failed dispatch might succeed if attempted again.
// Only transport failures qualify; template and configuration errors need an operator.
func IsRetryable(err error) bool {
	var delivery *common.DeliveryError
	return errors.As(err, &delivery)
}

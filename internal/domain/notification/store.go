package notification

import "context"

// LogMirror durably copies delivery log entries outside the process.
// Implementations live in infra/store/ (e.g., Supabase).
type LogMirror interface {
	// Save persists a single delivery log entry.
	Save(ctx context.Context, entry DeliveryLogEntry) error

	// Recent returns up to limit persisted entries, newest first.
	Recent(ctx context.Context, limit int) ([]DeliveryLogEntry, error)
}

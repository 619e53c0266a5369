package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotnotify/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// DefaultTable is the table delivery log entries are mirrored into.
const DefaultTable = "delivery_logs"

// maxInFlight bounds requests still running after their caller gave up.
const maxInFlight = 16

var errMirrorBusy = errors.New("too many delivery log requests in flight")

var _ notification.LogMirror = (*SupabaseLogMirror)(nil)

// SupabaseLogMirror copies delivery log entries into a Supabase table
// so they survive restarts.
type SupabaseLogMirror struct {
	client   *supa.Client
	table    string
	inflight chan struct{}
}

// NewSupabaseLogMirror creates a new Supabase-backed delivery log mirror.
func NewSupabaseLogMirror(supabaseURL, serviceKey, table string) (*SupabaseLogMirror, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	if table == "" {
		table = DefaultTable
	}
	return &SupabaseLogMirror{
		client:   client,
		table:    table,
		inflight: make(chan struct{}, maxInFlight),
	}, nil
}

// deliveryRow is the PostgREST representation of a delivery log entry.
type deliveryRow struct {
	ID         string  `json:"id"`
	Recipient  string  `json:"recipient"`
	Subject    string  `json:"subject"`
	Template   string  `json:"template"`
	Status     string  `json:"status"`
	Error      *string `json:"error_message,omitempty"`
	MessageID  *string `json:"provider_message_id,omitempty"`
	Provider   string  `json:"provider"`
	DurationMS int64   `json:"duration_ms"`
	CreatedAt  string  `json:"created_at"`
}

// Save inserts a delivery log entry. It returns when ctx is done even if
// the request is still running.
func (s *SupabaseLogMirror) Save(ctx context.Context, entry notification.DeliveryLogEntry) error {
	row := entryToRow(entry)
	_, err := s.execute(ctx, func() ([]byte, error) {
		_, _, err := s.client.From(s.table).Insert(row, false, "", "minimal", "").Execute()
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("inserting delivery log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit mirrored entries, newest first.
func (s *SupabaseLogMirror) Recent(ctx context.Context, limit int) ([]notification.DeliveryLogEntry, error) {
	if limit <= 0 {
		limit = notification.DefaultQueryLimit
	}

	data, err := s.execute(ctx, func() ([]byte, error) {
		data, _, err := s.client.From(s.table).
			Select("*", "", false).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			Range(0, limit-1, "").
			Execute()
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing delivery log entries: %w", err)
	}

	var rows []deliveryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing delivery log entries: %w", err)
	}

	entries := make([]notification.DeliveryLogEntry, len(rows))
	for i := range rows {
		entries[i] = rowToEntry(&rows[i])
	}
	return entries, nil
}

type result struct {
	data []byte
	err  error
}

// execute runs a PostgREST call that takes no context. A call outliving ctx
// keeps its in-flight slot until it returns.
func (s *SupabaseLogMirror) execute(ctx context.Context, call func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case s.inflight <- struct{}{}:
	default:
		return nil, errMirrorBusy
	}

	done := make(chan result, 1)
	go func() {
		defer func() { <-s.inflight }()
		data, err := call()
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func entryToRow(entry notification.DeliveryLogEntry) deliveryRow {
	row := deliveryRow{
		ID:         entry.ID,
		Recipient:  entry.Recipient,
		Subject:    entry.Subject,
		Template:   string(entry.Template),
		Status:     string(entry.Status),
		Provider:   entry.Provider,
		DurationMS: entry.Duration.Milliseconds(),
		CreatedAt:  entry.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if entry.Error != "" {
		row.Error = &entry.Error
	}
	if entry.MessageID != "" {
		row.MessageID = &entry.MessageID
	}
	return row
}

func rowToEntry(row *deliveryRow) notification.DeliveryLogEntry {
	entry := notification.DeliveryLogEntry{
		ID:        row.ID,
		Recipient: row.Recipient,
		Subject:   row.Subject,
		Template:  notification.TemplateName(row.Template),
		Status:    notification.DeliveryStatus(row.Status),
		Provider:  row.Provider,
		Duration:  time.Duration(row.DurationMS) * time.Millisecond,
	}
	if row.Error != nil {
		entry.Error = *row.Error
	}
	if row.MessageID != nil {
		entry.MessageID = *row.MessageID
	}
	if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
		entry.Timestamp = t
	}
	return entry
}

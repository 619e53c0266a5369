package notification

import "time"

// DeliveryStatus is the terminal outcome of a dispatch attempt.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryLogEntry records one dispatch attempt. Entries are immutable once recorded.
type DeliveryLogEntry struct {
	ID        string         `json:"id"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Template  TemplateName   `json:"template"`
	Status    DeliveryStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	Provider  string         `json:"provider"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration_ns"`
}

// DeliveriesResponse wraps a delivery log query.
type DeliveriesResponse struct {
	Entries  []DeliveryLogEntry `json:"entries"`
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Retained int                `json:"retained"`

	// Recorded counts every entry since startup, including evicted ones.
	Recorded uint64 `json:"recorded"`
}

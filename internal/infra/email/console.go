package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"slotnotify/internal/domain/notification"
)

var _ notification.Provider = (*ConsoleProvider)(nil)

// previewLength caps how much of the body the console provider logs.
const previewLength = 200

// ConsoleProvider logs the envelope instead of sending anything.
// Useful for development and testing; it always succeeds.
type ConsoleProvider struct {
	fromAddress string
	logger      *slog.Logger
	now         func() time.Time
}

// NewConsoleProvider creates a console provider. A nil logger uses slog.Default().
func NewConsoleProvider(fromAddress string, logger *slog.Logger) *ConsoleProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleProvider{
		fromAddress: fromAddress,
		logger:      logger,
		now:         time.Now,
	}
}

// Name returns the provider identifier.
func (p *ConsoleProvider) Name() string {
	return ProviderConsole
}

// Send logs the message and returns a mock message ID.
func (p *ConsoleProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	body := msg.Text
	if body == "" {
		body = msg.HTML
	}

	messageID := fmt.Sprintf("mock-%d", p.now().UnixNano())

	p.logger.InfoContext(ctx, "email (console provider, not sent)",
		"message_id", messageID,
		"to", msg.To,
		"from", p.fromAddress,
		"subject", msg.Subject,
		"preview", truncate(body, previewLength),
	)

	return messageID, nil
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

package notification

import "context"

// Provider defines the contract for a delivery mechanism.
// Implementations live in infra/email (SMTP, console, third-party APIs).
type Provider interface {
	// Send delivers a rendered message and returns the provider's message ID.
	Send(ctx context.Context, msg *Message) (string, error)

	// Name identifies the provider in logs and delivery entries.
	Name() string
}

// TemplateRenderer defines the contract for rendering notification templates.
// Implementations live in infra/template/.
type TemplateRenderer interface {
	// Render produces the final HTML body and a plain-text fallback for the named template.
	Render(ctx context.Context, name TemplateName, data map[string]any) (*Rendered, error)
}

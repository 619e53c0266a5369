package email

import (
	"log/slog"
	"strings"

	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
)

// Provider identifiers accepted in email.provider.
const (
	ProviderSMTP     = "smtp"
	ProviderConsole  = "console"
	ProviderResend   = "resend"
	ProviderPostmark = "postmark"
	ProviderSendGrid = "sendgrid"
)

type options struct {
	smtpSender SMTPSender
	logger     *slog.Logger
}

// Option customizes provider construction.
type Option func(*options)

// WithSMTPSender makes the smtp provider use an existing transport.
func WithSMTPSender(s SMTPSender) Option {
	return func(o *options) { o.smtpSender = s }
}

// WithLogger sets the logger used by the console provider.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New selects the single active provider from configuration.
// Incomplete settings yield an UnconfiguredProvider; an unknown provider name
// falls back to the console provider. New never fails.
func New(cfg config.EmailConfig, opts ...Option) notification.Provider {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case ProviderConsole:
		return NewConsoleProvider(cfg.FromAddress, o.logger)

	case ProviderSMTP:
		if missing := cfg.SMTP.Missing(); len(missing) > 0 {
			slog.Warn("smtp provider is missing configuration, sends will fail", "missing", missing)
			return NewUnconfiguredProvider(ProviderSMTP, missing...)
		}
		if o.smtpSender != nil {
			return NewSMTPProviderWithSender(o.smtpSender, cfg.FromAddress, cfg.FromName)
		}
		p, err := NewSMTPProvider(cfg.SMTP, cfg.FromAddress, cfg.FromName)
		if err != nil {
			slog.Error("failed to create smtp client, sends will fail", "error", err)
			return NewUnconfiguredProvider(ProviderSMTP)
		}
		return p

	case ProviderResend, ProviderPostmark, ProviderSendGrid:
		if cfg.APIKey == "" {
			slog.Warn("email provider is missing its api key, sends will fail", "provider", name)
			return NewUnconfiguredProvider(name, "api_key")
		}
		p, err := newAPIProvider(name, cfg)
		if err != nil {
			slog.Error("failed to create email provider, sends will fail", "provider", name, "error", err)
			return NewUnconfiguredProvider(name, "api_base_url")
		}
		return p

	default:
		slog.Warn("unknown email provider, falling back to console", "provider", cfg.Provider)
		return NewConsoleProvider(cfg.FromAddress, o.logger)
	}
}

func newAPIProvider(name string, cfg config.EmailConfig) (notification.Provider, error) {
	switch name {
	case ProviderPostmark:
		return NewPostmarkProvider(cfg.APIKey, cfg.PostmarkAccountToken, cfg.APIBaseURL, cfg.FromAddress, cfg.FromName), nil
	case ProviderSendGrid:
		return NewSendGridProvider(cfg.APIKey, cfg.APIBaseURL, cfg.FromAddress, cfg.FromName), nil
	default:
		return NewResendProvider(cfg.APIKey, cfg.APIBaseURL, cfg.FromAddress, cfg.FromName)
	}
}

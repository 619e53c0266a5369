package email

import (
	"context"
	"fmt"

	"slotnotify/internal/common"
	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"

	"github.com/wneessen/go-mail"
)

var _ notification.Provider = (*SMTPProvider)(nil)

// SMTPSender is the part of the go-mail client the provider uses.
// *mail.Client satisfies it; tests substitute a fake transport.
type SMTPSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPProvider sends emails through an SMTP server.
type SMTPProvider struct {
	client      SMTPSender
	fromAddress string
	fromName    string
}

// NewSMTPProvider creates an SMTP provider from configuration.
// Callers must check cfg.Missing() first; New does this for you.
func NewSMTPProvider(cfg config.SMTPConfig, fromAddress, fromName string) (*SMTPProvider, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.TimeoutSec > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout()))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return NewSMTPProviderWithSender(client, fromAddress, fromName), nil
}

// NewSMTPProviderWithSender creates an SMTP provider over an existing transport.
func NewSMTPProviderWithSender(client SMTPSender, fromAddress, fromName string) *SMTPProvider {
	return &SMTPProvider{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// Name returns the provider identifier.
func (p *SMTPProvider) Name() string {
	return ProviderSMTP
}

// Send delivers an email over SMTP and returns the generated Message-ID.
func (p *SMTPProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	m := mail.NewMsg()

	if err := m.FromFormat(p.fromName, p.fromAddress); err != nil {
		return "", common.NewProviderConfigurationError(ProviderSMTP, "from_address")
	}
	if err := m.To(msg.To); err != nil {
		return "", common.NewDeliveryError(ProviderSMTP, fmt.Errorf("invalid recipient: %w", err))
	}

	m.Subject(msg.Subject)
	if msg.Text != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	m.SetMessageID()
	m.SetDate()

	// Each send dials its own connection; concurrent sends never share a session.
	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", common.NewDeliveryError(ProviderSMTP, err)
	}

	return m.GetMessageID(), nil
}

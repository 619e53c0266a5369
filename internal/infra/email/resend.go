package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"slotnotify/internal/common"
	"slotnotify/internal/domain/notification"

	"github.com/resend/resend-go/v2"
)

var _ notification.Provider = (*ResendProvider)(nil)

// ResendProvider sends emails using the Resend API.
type ResendProvider struct {
	client      *resend.Client
	fromAddress string
	fromName    string
}

// NewResendProvider creates a new Resend email provider.
// An empty baseURL keeps the public Resend endpoint.
func NewResendProvider(apiKey, baseURL, fromAddress, fromName string) (*ResendProvider, error) {
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		// Request paths are resolved relative to the base, so it must end in a slash.
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &ResendProvider{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

// Name returns the provider identifier.
func (p *ResendProvider) Name() string {
	return ProviderResend
}

// Send delivers an email via the Resend API and returns the message ID.
func (p *ResendProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    formatFrom(p.fromName, p.fromAddress),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	resp, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", common.NewDeliveryError(ProviderResend, err)
	}
	if resp == nil || resp.Id == "" {
		return "", common.NewDeliveryError(ProviderResend, errors.New("response did not include a message id"))
	}

	return resp.Id, nil
}

// formatFrom builds an RFC 5322 "Name <address>" sender.
func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

package email

import (
	"context"
	"fmt"
	"strings"

	"slotnotify/internal/common"
	"slotnotify/internal/domain/notification"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

var _ notification.Provider = (*SendGridProvider)(nil)

// SendGridProvider sends emails using the SendGrid v3 mail API.
type SendGridProvider struct {
	apiKey      string
	host        string
	fromAddress string
	fromName    string
}

// NewSendGridProvider creates a new SendGrid email provider.
// An empty host keeps the public SendGrid endpoint.
func NewSendGridProvider(apiKey, host, fromAddress, fromName string) *SendGridProvider {
	return &SendGridProvider{
		apiKey:      apiKey,
		host:        strings.TrimRight(host, "/"),
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// Name returns the provider identifier.
func (p *SendGridProvider) Name() string {
	return ProviderSendGrid
}

// Send delivers an email via SendGrid. The message ID comes from the
// X-Message-Id response header.
func (p *SendGridProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	from := sgmail.NewEmail(p.fromName, p.fromAddress)
	to := sgmail.NewEmail("", msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := p.newClient().SendWithContext(ctx, m)
	if err != nil {
		return "", common.NewDeliveryError(ProviderSendGrid, err)
	}
	if resp.StatusCode >= 400 {
		return "", common.NewDeliveryError(ProviderSendGrid, fmt.Errorf("sendgrid API error: status %d: %s", resp.StatusCode, resp.Body))
	}

	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

// newClient builds a client per send; sendgrid.Client keeps the request
// body on the client itself.
func (p *SendGridProvider) newClient() *sendgrid.Client {
	req := sendgrid.GetRequest(p.apiKey, sendGridEndpoint, p.host)
	req.Method = "POST"
	return &sendgrid.Client{Request: req}
}

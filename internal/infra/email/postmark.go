package email

import (
	"context"
	"strings"

	"slotnotify/internal/common"
	"slotnotify/internal/domain/notification"

	"github.com/mrz1836/postmark"
)

var _ notification.Provider = (*PostmarkProvider)(nil)

// PostmarkProvider sends emails using Postmark's transactional API.
type PostmarkProvider struct {
	client      *postmark.Client
	fromAddress string
	fromName    string
}

// NewPostmarkProvider creates a Postmark provider. accountToken may be empty;
// only the server token is needed to send. An empty baseURL keeps the public
// Postmark endpoint.
func NewPostmarkProvider(serverToken, accountToken, baseURL, fromAddress, fromName string) *PostmarkProvider {
	client := postmark.NewClient(serverToken, accountToken)
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &PostmarkProvider{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// Name returns the provider identifier.
func (p *PostmarkProvider) Name() string {
	return ProviderPostmark
}

// Send delivers an email via Postmark and returns its MessageID.
// Opens are tracked, links only in the HTML part. A non-zero ErrorCode in
// the response body surfaces as an error from the client.
func (p *PostmarkProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       formatFrom(p.fromName, p.fromAddress),
		To:         msg.To,
		Subject:    msg.Subject,
		HTMLBody:   msg.HTML,
		TextBody:   msg.Text,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return "", common.NewDeliveryError(ProviderPostmark, err)
	}

	return resp.MessageID, nil
}

package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"slotnotify/internal/common"
	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
)

type fakeSender struct {
	err  error
	msgs []*mail.Msg
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func smtpConfig() config.EmailConfig {
	return config.EmailConfig{
		Provider:    ProviderSMTP,
		FromAddress: "no-reply@slotwise.app",
		FromName:    "Slotwise",
		SMTP: config.SMTPConfig{
			Host:       "smtp.example.com",
			Port:       587,
			User:       "mailer",
			Password:   "secret",
			TimeoutSec: 10,
		},
	}
}

func testMessage() *notification.Message {
	return &notification.Message{
		To:      "a@b.com",
		Subject: "Hi",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	withProvider := func(name, apiKey string) config.EmailConfig {
		cfg := smtpConfig()
		cfg.Provider = name
		cfg.APIKey = apiKey
		return cfg
	}

	tests := []struct {
		name     string
		cfg      config.EmailConfig
		wantType notification.Provider
		wantName string
	}{
		{name: "console", cfg: withProvider("console", ""), wantType: &ConsoleProvider{}, wantName: ProviderConsole},
		{name: "smtp", cfg: smtpConfig(), wantType: &SMTPProvider{}, wantName: ProviderSMTP},
		{name: "smtp is case insensitive", cfg: withProvider(" SMTP ", ""), wantType: &SMTPProvider{}, wantName: ProviderSMTP},
		{name: "resend", cfg: withProvider("resend", "re_123"), wantType: &ResendProvider{}, wantName: ProviderResend},
		{name: "postmark", cfg: withProvider("postmark", "pm-token"), wantType: &PostmarkProvider{}, wantName: ProviderPostmark},
		{name: "sendgrid", cfg: withProvider("sendgrid", "SG.key"), wantType: &SendGridProvider{}, wantName: ProviderSendGrid},
		{name: "resend without key", cfg: withProvider("resend", ""), wantType: &UnconfiguredProvider{}, wantName: ProviderResend},
		{name: "sendgrid without key", cfg: withProvider("sendgrid", ""), wantType: &UnconfiguredProvider{}, wantName: ProviderSendGrid},
		{name: "unknown falls back to console", cfg: withProvider("carrier-pigeon", ""), wantType: &ConsoleProvider{}, wantName: ProviderConsole},
		{name: "empty falls back to console", cfg: withProvider("", ""), wantType: &ConsoleProvider{}, wantName: ProviderConsole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			assert.IsType(t, tt.wantType, p)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNew_SMTPMissingSettings(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*config.SMTPConfig)
		wantMissing []string
	}{
		{name: "host", mutate: func(c *config.SMTPConfig) { c.Host = "" }, wantMissing: []string{"host"}},
		{name: "user", mutate: func(c *config.SMTPConfig) { c.User = "" }, wantMissing: []string{"user"}},
		{name: "password", mutate: func(c *config.SMTPConfig) { c.Password = "" }, wantMissing: []string{"password"}},
		{name: "all", mutate: func(c *config.SMTPConfig) { *c = config.SMTPConfig{Port: 587} }, wantMissing: []string{"host", "user", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smtpConfig()
			tt.mutate(&cfg.SMTP)
			sender := &fakeSender{}

			p := New(cfg, WithSMTPSender(sender))
			require.IsType(t, &UnconfiguredProvider{}, p)

			_, err := p.Send(context.Background(), testMessage())

			var cfgErr *common.ProviderConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, ProviderSMTP, cfgErr.Provider)
			assert.Equal(t, tt.wantMissing, cfgErr.Missing)
			assert.Contains(t, err.Error(), "not configured")
			assert.Empty(t, sender.msgs)
		})
	}
}

func TestSMTPProvider_Send(t *testing.T) {
	sender := &fakeSender{}
	p := New(smtpConfig(), WithSMTPSender(sender))

	id, err := p.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, []string{"Hi"}, msg.GetGenHeader(mail.HeaderSubject))

	to := msg.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "a@b.com")

	from := msg.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "no-reply@slotwise.app")
}

func TestSMTPProvider_TransportError(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp 10.0.0.1:587: connect: ECONNREFUSED")}
	p := NewSMTPProviderWithSender(sender, "no-reply@slotwise.app", "Slotwise")

	id, err := p.Send(context.Background(), testMessage())

	assert.Empty(t, id)
	var delivery *common.DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, ProviderSMTP, delivery.Provider)
	assert.Contains(t, err.Error(), "ECONNREFUSED")
}

func TestSMTPProvider_InvalidAddresses(t *testing.T) {
	t.Run("recipient", func(t *testing.T) {
		sender := &fakeSender{}
		p := NewSMTPProviderWithSender(sender, "no-reply@slotwise.app", "Slotwise")

		msg := testMessage()
		msg.To = "not an address"
		_, err := p.Send(context.Background(), msg)

		var delivery *common.DeliveryError
		assert.ErrorAs(t, err, &delivery)
		assert.Empty(t, sender.msgs)
	})

	t.Run("sender", func(t *testing.T) {
		sender := &fakeSender{}
		p := NewSMTPProviderWithSender(sender, "nope", "Slotwise")

		_, err := p.Send(context.Background(), testMessage())

		var cfgErr *common.ProviderConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, sender.msgs)
	})
}

func TestConsoleProvider_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := New(config.EmailConfig{Provider: "console", FromAddress: "no-reply@slotwise.app"}, WithLogger(logger))

	msg := testMessage()
	msg.Text = strings.Repeat("x", 500)

	id, err := p.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "mock-"))

	var logged map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logged))
	assert.Equal(t, id, logged["message_id"])
	assert.Equal(t, "a@b.com", logged["to"])
	assert.Equal(t, "no-reply@slotwise.app", logged["from"])
	assert.Equal(t, "Hi", logged["subject"])

	preview, ok := logged["preview"].(string)
	require.True(t, ok)
	assert.Equal(t, previewLength+1, len([]rune(preview)))
}

func TestConsoleProvider_FallsBackToHTMLPreview(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProvider("no-reply@slotwise.app", slog.New(slog.NewJSONHandler(&buf, nil)))

	msg := testMessage()
	msg.Text = ""
	_, err := p.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "hé…", truncate("héllo", 2))
	assert.Equal(t, "", truncate("", 3))
}

func TestFormatFrom(t *testing.T) {
	assert.Equal(t, "Slotwise <no-reply@slotwise.app>", formatFrom("Slotwise", "no-reply@slotwise.app"))
	assert.Equal(t, "no-reply@slotwise.app", formatFrom("", "no-reply@slotwise.app"))
}

package email

import (
	"context"

	"slotnotify/internal/common"
	"slotnotify/internal/domain/notification"
)

var _ notification.Provider = (*UnconfiguredProvider)(nil)

// UnconfiguredProvider stands in for a selected provider whose settings are incomplete.
// Every send fails with the same configuration error without touching the network.
type UnconfiguredProvider struct {
	name    string
	missing []string
}

// NewUnconfiguredProvider creates a provider that always reports missing configuration.
func NewUnconfiguredProvider(name string, missing ...string) *UnconfiguredProvider {
	return &UnconfiguredProvider{name: name, missing: missing}
}

// Name returns the name of the provider that was selected.
func (p *UnconfiguredProvider) Name() string {
	return p.name
}

// Send always fails with a ProviderConfigurationError.
func (p *UnconfiguredProvider) Send(context.Context, *notification.Message) (string, error) {
	return "", common.NewProviderConfigurationError(p.name, p.missing...)
}

package common

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError indicates invalid input data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UnauthorizedError indicates missing or invalid authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// RateLimitError indicates a recipient has exceeded its send quota.
type RateLimitError struct {
	Recipient string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for recipient: %s", e.Recipient)
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(recipient string) *RateLimitError {
	return &RateLimitError{Recipient: recipient}
}

// TemplateLoadError indicates a named template or the base layout could not be
// read or parsed. Fixing it requires operator intervention.
type TemplateLoadError struct {
	Name string
	Err  error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("loading template %q: %v", e.Name, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

// NewTemplateLoadError creates a new TemplateLoadError.
func NewTemplateLoadError(name string, err error) *TemplateLoadError {
	return &TemplateLoadError{Name: name, Err: err}
}

// TemplateRenderError indicates a template parsed but failed during execution,
// usually a mismatch between caller data and the template.
type TemplateRenderError struct {
	Name string
	Err  error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("rendering template %q: %v", e.Name, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }

// NewTemplateRenderError creates a new TemplateRenderError.
func NewTemplateRenderError(name string, err error) *TemplateRenderError {
	return &TemplateRenderError{Name: name, Err: err}
}

// ProviderConfigurationError indicates the active provider lacks required settings.
// Every send fails the same way until configuration is fixed.
type ProviderConfigurationError struct {
	Provider string
	Missing  []string
}

func (e *ProviderConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s provider not configured", e.Provider)
	}
	return fmt.Sprintf("%s provider not configured: missing %v", e.Provider, e.Missing)
}

// NewProviderConfigurationError creates a new ProviderConfigurationError.
func NewProviderConfigurationError(provider string, missing ...string) *ProviderConfigurationError {
	return &ProviderConfigurationError{Provider: provider, Missing: missing}
}

// DeliveryError indicates the provider's transport rejected or failed to complete a send.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NewDeliveryError creates a new DeliveryError.
func NewDeliveryError(provider string, err error) *DeliveryError {
	return &DeliveryError{Provider: provider, Err: err}
}

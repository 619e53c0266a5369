package notification

// TemplateName identifies a content template rendered inside the shared base layout.
type TemplateName string

const (
	TemplateBookingConfirmation TemplateName = "booking-confirmation"
	TemplateBookingCancellation TemplateName = "booking-cancellation"
	TemplateBookingReminder     TemplateName = "booking-reminder"
	TemplateBookingRescheduled  TemplateName = "booking-rescheduled"
	TemplatePasswordReset       TemplateName = "password-reset"
	TemplateWelcome             TemplateName = "welcome"
)

// defaultSubjects maps known templates to the subject used when the caller sends none.
var defaultSubjects = map[TemplateName]string{
	TemplateBookingConfirmation: "Your Booking Is Confirmed",
	TemplateBookingCancellation: "Your Booking Has Been Cancelled",
	TemplateBookingReminder:     "Reminder: Upcoming Appointment",
	TemplateBookingRescheduled:  "Your Booking Has Been Rescheduled",
	TemplatePasswordReset:       "Reset Your Password",
	TemplateWelcome:             "Welcome to Slotwise",
}

// IsKnown reports whether t is one of the registered templates.
func (t TemplateName) IsKnown() bool {
	_, ok := defaultSubjects[t]
	return ok
}

// DefaultSubject returns the registered subject for t, or "" for unknown templates.
func (t TemplateName) DefaultSubject() string {
	return defaultSubjects[t]
}

// KnownTemplates returns every registered template name.
func KnownTemplates() []TemplateName {
	return []TemplateName{
		TemplateBookingConfirmation,
		TemplateBookingCancellation,
		TemplateBookingReminder,
		TemplateBookingRescheduled,
		TemplatePasswordReset,
		TemplateWelcome,
	}
}

// Request is a single notification to dispatch. It is never persisted.
type Request struct {
	To       string         `json:"to" binding:"required,email"`
	Subject  string         `json:"subject"`
	Template TemplateName   `json:"template" binding:"required"`
	Data     map[string]any `json:"data"`
}

// DispatchResult is what callers inspect after a dispatch; failures are values, not panics.
type DispatchResult struct {
	Success   bool   `json:"success"`
	LogID     string `json:"log_id"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`

	// Err keeps the typed cause so outer layers can map it with errors.As.
	Err error `json:"-"`
}

// Message is the internal rendered message ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Rendered is the output of a template render.
type Rendered struct {
	HTML string
	Text string
}

// EnqueueResponse is returned when a dispatch is handed to the queue instead of run inline.
type EnqueueResponse struct {
	TaskID   string       `json:"task_id"`
	Template TemplateName `json:"template"`
	To       string       `json:"to"`
	Status   string       `json:"status"`
}

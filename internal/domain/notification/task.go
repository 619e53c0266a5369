package notification

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeDispatch is the asynq task type for dispatching a notification.
const TaskTypeDispatch = "notification:dispatch"

// DispatchPayload is the serialized payload for a dispatch task.
// It carries the whole request since nothing is persisted before dispatch.
type DispatchPayload struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Template TemplateName   `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewDispatchTask creates a new asynq task for dispatching a notification.
func NewDispatchTask(req *Request) (*asynq.Task, error) {
	payload, err := json.Marshal(DispatchPayload{
		To:       req.To,
		Subject:  req.Subject,
		Template: req.Template,
		Data:     req.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDispatch, payload), nil
}

// ParseDispatchPayload deserializes the task payload back into a request.
func ParseDispatchPayload(data []byte) (*Request, error) {
	var p DispatchPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	if p.To == "" || p.Template == "" {
		return nil, fmt.Errorf("task payload missing recipient or template")
	}
	return &Request{
		To:       p.To,
		Subject:  p.Subject,
		Template: p.Template,
		Data:     p.Data,
	}, nil
}

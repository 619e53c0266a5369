package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotnotify/internal/domain/notification"
)

type fakeTaskClient struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeTaskClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task = task
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-42", Queue: queueName, Type: task.Type()}, nil
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 30 * time.Second},
		{attempt: 1, want: 30 * time.Second},
		{attempt: 2, want: time.Minute},
		{attempt: 3, want: 2 * time.Minute},
		{attempt: 5, want: 8 * time.Minute},
		{attempt: 7, want: 32 * time.Minute},
		{attempt: 8, want: time.Hour},
		{attempt: 20, want: time.Hour},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryDelay(tt.attempt, nil, nil), "attempt %d", tt.attempt)
	}
}

func TestEnqueuer_EnqueueDispatch(t *testing.T) {
	client := &fakeTaskClient{}
	e := &Enqueuer{client: client, maxRetry: 3}

	id, err := e.EnqueueDispatch(context.Background(), &notification.Request{
		To:       "a@b.com",
		Template: notification.TemplateWelcome,
		Data:     map[string]any{"name": "Al"},
	})
	require.NoError(t, err)
	assert.Equal(t, "task-42", id)

	require.NotNil(t, client.task)
	assert.Equal(t, notification.TaskTypeDispatch, client.task.Type())
	assert.Len(t, client.opts, 2)

	req, err := notification.ParseDispatchPayload(client.task.Payload())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", req.To)
	assert.Equal(t, "Al", req.Data["name"])
}

func TestEnqueuer_ClientError(t *testing.T) {
	e := &Enqueuer{client: &fakeTaskClient{err: errors.New("redis: connection refused")}, maxRetry: 3}

	_, err := e.EnqueueDispatch(context.Background(), &notification.Request{To: "a@b.com", Template: notification.TemplateWelcome})
	assert.ErrorContains(t, err, "connection refused")
}

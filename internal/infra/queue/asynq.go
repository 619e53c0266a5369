package queue

import (
	"context"
	"fmt"
	"time"

	"slotnotify/internal/domain/notification"

	"github.com/hibiken/asynq"
)

// queueName is the asynq queue dispatch tasks are routed to.
const queueName = "notifications"

var _ notification.Enqueuer = (*Enqueuer)(nil)

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
}

// NewServer creates a new asynq server connected to Redis.
func NewServer(redisAddr, password string, db int, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				queueName: 10, // priority weight
				"default": 1,
			},
			RetryDelayFunc: RetryDelay,
		},
	)
}

// RetryDelay is exponential backoff: 30s, 60s, 120s, 240s, 480s, capped at one hour.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > 7 {
		return time.Hour
	}
	return time.Duration(30*(1<<uint(n-1))) * time.Second
}

// taskClient is the part of *asynq.Client the enqueuer needs.
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer adapts an asynq client to notification.Enqueuer.
type Enqueuer struct {
	client   taskClient
	maxRetry int
}

// NewEnqueuer creates an enqueuer that routes dispatch tasks to the notifications queue.
func NewEnqueuer(client *asynq.Client, maxRetry int) *Enqueuer {
	return &Enqueuer{client: client, maxRetry: maxRetry}
}

// EnqueueDispatch enqueues a dispatch task and returns the asynq task ID.
func (e *Enqueuer) EnqueueDispatch(ctx context.Context, req *notification.Request) (string, error) {
	task, err := notification.NewDispatchTask(req)
	if err != nil {
		return "", fmt.Errorf("creating task: %w", err)
	}

	info, err := e.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(e.maxRetry),
		asynq.Queue(queueName),
	)
	if err != nil {
		return "", fmt.Errorf("enqueuing task: %w", err)
	}

	return info.ID, nil
}

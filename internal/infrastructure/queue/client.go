package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"wildbook-backend/internal/shared"
)

// Client enqueues background tasks for the worker process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueResetEmail queues a password-reset email. Delivery is
// fire-and-forget from the request's point of view; retries happen in the
// worker.
func (c *Client) EnqueueResetEmail(payload shared.ResetEmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reset email payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeSendResetEmail, data)
	if _, err := c.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)); err != nil {
		return fmt.Errorf("failed to enqueue reset email: %w", err)
	}
	return nil
}

// EnqueueWelcomeEmail queues a welcome email after registration.
func (c *Client) EnqueueWelcomeEmail(payload shared.WelcomeEmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal welcome email payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeSendWelcomeEmail, data)
	if _, err := c.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)); err != nil {
		return fmt.Errorf("failed to enqueue welcome email: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

package handlers

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"wildbook-backend/internal/infrastructure/email"
	"wildbook-backend/internal/shared"
)

// ResetEmailHandler sends password-reset emails enqueued by the API.
func ResetEmailHandler(emailSvc email.EmailService) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.ResetEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry // malformed payload, retrying won't help
		}

		return emailSvc.SendResetPasswordEmail(ctx, email.ResetPasswordData{
			Email:     p.Email,
			ResetURL:  p.ResetURL,
			ExpiresIn: "1 hour",
		})
	}
}

// WelcomeEmailHandler sends the post-registration welcome email.
func WelcomeEmailHandler(emailSvc email.EmailService) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.WelcomeEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		return emailSvc.SendWelcomeEmail(ctx, email.WelcomeData{
			Email: p.Email,
			Name:  p.Name,
		})
	}
}

package job

import (
	"context"

	"github.com/hibiken/asynq"

	"wildbook-backend/internal/domains/user"
	"wildbook-backend/pkg/logger"
)

// NewCleanupExpiredTokensHandler returns the asynq handler for the periodic
// reset-token cleanup job.
func NewCleanupExpiredTokensHandler(svc user.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		cleared, err := svc.CleanupExpiredResetTokens(ctx)
		if err != nil {
			logger.Error("reset token cleanup failed", err)
			return err
		}
		logger.Info("reset token cleanup finished", map[string]interface{}{"cleared": cleared})
		return nil
	}
}

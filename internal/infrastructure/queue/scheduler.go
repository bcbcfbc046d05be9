package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"wildbook-backend/internal/shared"
)

// Scheduler registers periodic maintenance tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, password string, db int) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(
			asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db},
			&asynq.SchedulerOpts{
				Location: time.UTC,
				LogLevel: asynq.InfoLevel,
			},
		),
	}
}

// RegisterJobs wires up all periodic tasks. Expired reset tokens are swept
// hourly.
func (s *Scheduler) RegisterJobs() error {
	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, nil)
	if _, err := s.scheduler.Register("@every 1h", task); err != nil {
		return fmt.Errorf("failed to register token cleanup job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

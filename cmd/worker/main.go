package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"wildbook-backend/internal/config"
	"wildbook-backend/internal/domains/user/job"
	userRepo "wildbook-backend/internal/domains/user/repository"
	userService "wildbook-backend/internal/domains/user/service"
	"wildbook-backend/internal/infrastructure/database"
	"wildbook-backend/internal/infrastructure/email"
	"wildbook-backend/internal/infrastructure/queue"
	"wildbook-backend/internal/infrastructure/queue/handlers"
	"wildbook-backend/internal/shared"
	"wildbook-backend/pkg/jwt"
	"wildbook-backend/pkg/logger"
)

// The worker process consumes queued emails and runs periodic maintenance.
// It shares the database with the API but has no HTTP surface.
func main() {
	if err := godotenv.Load(); err != nil {
		// production uses real environment variables
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", err)
		os.Exit(1)
	}
	logger.Init(cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Error("failed to load database config", err)
		os.Exit(1)
	}

	db := database.NewPostgresDB(dbConfig)
	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Connect(connectCtx); err != nil {
		cancel()
		logger.Error("failed to connect to database", err)
		os.Exit(1)
	}
	cancel()
	defer db.Close()

	emailSvc := email.NewSMTPEmailService(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.From)

	queueClient := queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	defer queueClient.Close()

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	users := userService.NewUserService(
		userRepo.NewPostgresRepository(db.Pool),
		jwtManager,
		queueClient,
		cfg.App.BaseURL,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(shared.TypeSendResetEmail, handlers.ResetEmailHandler(emailSvc))
	mux.HandleFunc(shared.TypeSendWelcomeEmail, handlers.WelcomeEmailHandler(emailSvc))
	mux.Handle(shared.TypeCleanupExpiredTokens, job.NewCleanupExpiredTokensHandler(users))

	scheduler := queue.NewScheduler(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := scheduler.RegisterJobs(); err != nil {
		logger.Error("failed to register periodic jobs", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", err)
		srv.Shutdown()
		os.Exit(1)
	}

	logger.Info("worker started", map[string]interface{}{"env": cfg.App.Environment})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker", nil)
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info("worker exited", nil)
}

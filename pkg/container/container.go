package container

import (
	"context"
	"fmt"
	"time"

	"wildbook-backend/internal/config"
	"wildbook-backend/internal/infrastructure/cache"
	"wildbook-backend/internal/infrastructure/database"
	"wildbook-backend/internal/infrastructure/queue"
	"wildbook-backend/internal/infrastructure/storage"
	pkgcache "wildbook-backend/pkg/cache"
	"wildbook-backend/pkg/jwt"
	"wildbook-backend/pkg/logger"

	"wildbook-backend/internal/domains/animal"
	animalHandler "wildbook-backend/internal/domains/animal/handler"
	animalRepo "wildbook-backend/internal/domains/animal/repository"
	animalService "wildbook-backend/internal/domains/animal/service"
	"wildbook-backend/internal/domains/user"
	userHandler "wildbook-backend/internal/domains/user/handler"
	userRepo "wildbook-backend/internal/domains/user/repository"
	userService "wildbook-backend/internal/domains/user/service"
)

// Container wires the full dependency graph: config, infrastructure,
// repositories, services, handlers. Everything is a singleton living for the
// lifetime of the process.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      pkgcache.Cache
	Storage    *storage.MinIOStorage
	Queue      *queue.Client
	JWTManager *jwt.Manager

	AnimalRepo animal.Repository
	UserRepo   user.Repository

	AnimalService animal.Service
	UserService   user.Service

	AnimalHandler *animalHandler.AnimalHandler
	UserHandler   *userHandler.UserHandler
}

// NewContainer builds the graph in dependency order: config first, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := cache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(*cache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Cache misses degrade to database reads, so keep going.
			logger.Error("redis connection failed, running without cache", err)
		}
	}
	c.Cache = redisCache

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}
	c.Storage = minioStorage

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	c.AnimalRepo = animalRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)

	c.AnimalService = animalService.NewAnimalService(c.AnimalRepo, c.Storage, storage.NewImageProcessor())
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, c.Queue, cfg.App.BaseURL)

	c.AnimalHandler = animalHandler.NewAnimalHandler(c.AnimalService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.AnimalService)

	return c, nil
}

// Cleanup releases infrastructure resources during graceful shutdown.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*cache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("failed to close redis", err)
			}
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}

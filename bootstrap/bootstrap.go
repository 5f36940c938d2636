package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"codmsocial-backend/internal/config"
	"codmsocial-backend/internal/infrastructure/cache"
	"codmsocial-backend/internal/infrastructure/database"
	"codmsocial-backend/internal/infrastructure/logging"
	"codmsocial-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App is a wired server with its open connections.
type App struct {
	Config *config.Config
	Fiber  *fiber.App
	DB     *gorm.DB
	Redis  *redis.Client
}

// New loads config, opens Postgres and Redis, migrates and builds the Fiber
// app. Used by cmd/api and the serverless entry in api/.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("database migrate: %w", err)
	}
	log.Info().Msg("database connected")

	rdb, err := cache.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("redis connected")

	return &App{
		Config: cfg,
		Fiber:  router.CreateApp(cfg, db, rdb),
		DB:     db,
		Redis:  rdb,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

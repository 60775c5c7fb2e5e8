// Package app assembles the service from its configuration.
package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/auth"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/cache"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/handlers"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/service"
)

// App is a wired service ready to serve HTTP.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *goredis.Client
	Router *gin.Engine
}

// New opens the database and cache, seeds the bootstrap manager and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	gin.SetMode(cfg.Server.GinMode)

	db, err := database.InitDB(cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	rdb, err := cache.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	workers := database.NewWorkerStore(db)
	archives := database.NewArchiveStore(db, cfg.Archive.Retention, logger)

	var archiveCache service.ArchiveCache
	if c := cache.NewArchiveCache(rdb, cfg.Redis.TTL, logger); c != nil {
		archiveCache = c
	}

	authenticator := auth.New(cfg.Auth)
	if err := auth.EnsureManagerExists(ctx, workers, cfg.Auth, logger); err != nil {
		return nil, err
	}

	h := &handlers.Handler{
		DB:        db,
		Workers:   workers,
		Schedules: service.NewScheduleService(archives, workers, archiveCache, logger),
		Auth:      authenticator,
		Logger:    logger,
	}

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  rdb,
		Router: handlers.NewRouter(h, cfg.Server),
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	} else {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

package app

import (
	"context"
	"log/slog"
	"os"

	"userposts/internal/cache"
	"userposts/internal/config"
	"userposts/internal/database"
	"userposts/internal/repository"
	"userposts/internal/service"
	"userposts/internal/validation"
)

func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// Resources is what App opened and main must close.
type Resources struct {
	DB    *database.DB
	Lists cache.Cache
}

func (r *Resources) Close() {
	r.Lists.Close()
	r.DB.CloseDB()
}

func App(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resources, *repository.Repository, *service.Service) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lists, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		logger.Error("redis connection failed", slog.String("error", err.Error()))
		db.CloseDB()
		os.Exit(1)
	}
	if cfg.Redis.Addr != "" {
		logger.Info("list cache enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.Redis.TTL))
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB, repository.Options{
		Placeholder:    db.Dialect.Placeholder,
		AcquireTimeout: db.AcquireTimeout,
		Logger:         logger,
	})

	services := service.NewService(repo, validation.New(), lists, logger)

	if cfg.SeedSampleUser {
		if _, err := services.User.EnsureSampleUser(ctx); err != nil {
			logger.Error("seeding sample user failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	return &Resources{DB: db, Lists: lists}, repo, services
}

package initializer

import (
	"context"
	"fmt"

	"github.com/amirasaad/transfers/infra"
	infraaudit "github.com/amirasaad/transfers/infra/audit"
	infraeventbus "github.com/amirasaad/transfers/infra/eventbus"
	infrarepository "github.com/amirasaad/transfers/infra/repository"
	"github.com/amirasaad/transfers/infra/repository/memory"
	"github.com/amirasaad/transfers/pkg/app"
	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/eventbus"
)

// InitializeDependencies builds the storage, event bus and audit sinks
// selected by cfg. Without a database URL the in-memory store is used; the
// bus is Kafka, then Redis, then in-memory, whichever is configured first.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, err error) {
	logger := setupLogger(cfg.Log)
	deps = &app.Deps{
		Logger: logger,
		Clock:  clock.System,
	}
	defer func() {
		if err != nil {
			for i := len(deps.Closers) - 1; i >= 0; i-- {
				_ = deps.Closers[i].Close()
			}
			deps = nil
		}
	}()

	// Initialize storage
	if cfg.DB != nil && cfg.DB.Url != "" {
		db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			return deps, err
		}
		if sqlDB, err := db.DB(); err == nil {
			deps.Closers = append(deps.Closers, sqlDB)
		}
		if cfg.DB.AutoMigrate {
			if err := infra.Migrate(db); err != nil {
				return deps, err
			}
		}
		deps.Uow = infrarepository.NewUoW(db)
		logger.Info("Using postgres storage")
	} else {
		deps.Uow = memory.NewUoW(memory.NewStore())
		logger.Warn("DATABASE_URL is not set, using in-memory storage")
	}

	// Initialize event bus
	var bus eventbus.Bus
	switch {
	case cfg.Kafka != nil && cfg.Kafka.Brokers != "":
		kafkaBus, err := infraeventbus.NewWithKafka(cfg.Kafka, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		deps.Closers = append(deps.Closers, kafkaBus)
		bus = kafkaBus
	case cfg.Redis != nil && cfg.Redis.URL != "":
		redisBus, err := infraeventbus.NewWithRedis(cfg.Redis, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		deps.Closers = append(deps.Closers, redisBus)
		bus = redisBus
	default:
		bus = infraeventbus.NewWithMemory(logger)
	}
	deps.EventBus = bus

	// Initialize audit sinks
	deps.AuditSinks = append(deps.AuditSinks, infraaudit.NewLogSink(logger).Handle)
	if cfg.Mongo != nil && cfg.Mongo.URL != "" {
		sink, err := infraaudit.NewMongoSink(context.Background(), cfg.Mongo)
		if err != nil {
			return deps, fmt.Errorf("failed to create Mongo audit sink: %w", err)
		}
		deps.Closers = append(deps.Closers, sink)
		deps.AuditSinks = append(deps.AuditSinks, sink.Handle)
	}

	return deps, nil
}

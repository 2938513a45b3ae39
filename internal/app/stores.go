package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

const taskPurgeInterval = 10 * time.Minute

// openTaskStore builds the backend selected by TASK_STORE.
func openTaskStore(ctx context.Context, log *logger.Logger, cfg config.TaskConfig) (tasks.Store, error) {
	log.Info("Opening task store", "store", cfg.Store, "ttl", cfg.TTL.String())
	switch cfg.Store {
	case config.TaskStoreMemory, "":
		return tasks.NewMemoryStore(cfg.TTL), nil
	case config.TaskStoreRedis:
		return tasks.NewRedisStore(ctx, log, tasks.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
			TTL:      cfg.TTL,
		})
	case config.TaskStoreSQL:
		return tasks.OpenSQLStore(log, tasks.SQLOptions{
			PostgresDSN: cfg.PostgresDSN,
			SQLitePath:  cfg.SQLitePath,
			TTL:         cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("unknown task store %q", cfg.Store)
	}
}

type expiringStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeLoop deletes expired rows for stores that do not expire on their own.
func purgeLoop(ctx context.Context, log *logger.Logger, store tasks.Store, every time.Duration) error {
	es, ok := store.(expiringStore)
	if !ok {
		return nil
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := es.PurgeExpired(ctx)
			if err != nil {
				log.Warn("Task purge failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("Purged expired tasks", "count", n)
			}
		}
	}
}

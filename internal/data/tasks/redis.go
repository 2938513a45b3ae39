package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisStore keeps one JSON value per task under "<prefix>:task:<id>".
type RedisStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore dials and pings Redis.
func NewRedisStore(ctx context.Context, baseLog *logger.Logger, opts RedisOptions) (*RedisStore, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisStore(baseLog, rdb, opts.Prefix, opts.TTL), nil
}

func newRedisStore(baseLog *logger.Logger, rdb *goredis.Client, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "deckforge"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		log:    baseLog.With("store", "RedisTaskStore"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":task:" + id }

func (s *RedisStore) Create(ctx context.Context, t *Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.key(t.ID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create task: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Task, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get task: %w", err)
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		s.log.Warn("Corrupt task record", "task_id", id, "error", err)
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &t, nil
}

func (s *RedisStore) Save(ctx context.Context, t *Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetXX(ctx, s.key(t.ID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis save task: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

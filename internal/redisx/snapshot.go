package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Snapshot caches a whole JSON-serialised value under one key.
// Absent or malformed values are reported as a miss so callers fall back to the database.
type Snapshot[T any] struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
	log *slog.Logger
}

func NewSnapshot[T any](rdb redis.Cmdable, key string, ttl time.Duration, log *slog.Logger) *Snapshot[T] {
	if ttl <= 0 {
		ttl = TTLSnapshot
	}
	return &Snapshot[T]{rdb: rdb, key: key, ttl: ttl, log: log}
}

func (s *Snapshot[T]) Key() string { return s.key }

func (s *Snapshot[T]) Load(ctx context.Context) (T, bool) {
	var zero T
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("snapshot read failed", slog.String("key", s.key), logger.Err(err))
		}
		return zero, false
	}
	v, err := Decode[T](raw)
	if err != nil {
		s.log.Warn("snapshot malformed, ignoring", slog.String("key", s.key), logger.Err(err))
		_ = s.rdb.Del(ctx, s.key).Err()
		return zero, false
	}
	return v, true
}

func (s *Snapshot[T]) Save(ctx context.Context, v T) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("snapshot encode failed", slog.String("key", s.key), logger.Err(err))
		return
	}
	if err := s.rdb.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		s.log.Warn("snapshot write failed", slog.String("key", s.key), logger.Err(err))
	}
}

func (s *Snapshot[T]) Invalidate(ctx context.Context) {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		s.log.Warn("snapshot invalidate failed", slog.String("key", s.key), logger.Err(err))
	}
}

func Decode[T any](raw []byte) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

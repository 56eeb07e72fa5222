package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type Store interface {
	Load(ctx context.Context, seller string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, seller string) error
}

// RedisStore keeps one JSON draft per seller under listing_draft:{seller}.
type RedisStore struct {
	Redis redis.Cmdable
	TTL   time.Duration
	Log   *slog.Logger
}

func key(seller string) string { return fmt.Sprintf(redisx.KeyListingDraft, seller) }

// Load returns ErrNotFound for absent drafts. A malformed draft is dropped and reported as absent.
func (s *RedisStore) Load(ctx context.Context, seller string) (Draft, error) {
	const op = "drafts.RedisStore.Load"
	raw, err := s.Redis.Get(ctx, key(seller)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, fmt.Errorf("%s: %w", op, err)
	}
	d, err := redisx.Decode[Draft](raw)
	if err != nil {
		s.Log.Warn("malformed draft dropped", slog.String("seller", seller), logger.Err(err))
		_ = s.Redis.Del(ctx, key(seller)).Err()
		return Draft{}, ErrNotFound
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, d Draft) error {
	const op = "drafts.RedisStore.Save"
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = redisx.TTLDraft
	}
	if err := s.Redis.Set(ctx, key(d.Seller), b, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, seller string) error {
	const op = "drafts.RedisStore.Delete"
	if err := s.Redis.Del(ctx, key(seller)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package activity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	kafkax "github.com/ariefcatur/gametrust/internal/kafka"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Recorder publishes entries to the event stream and keeps a capped feed in Redis.
type Recorder struct {
	Producer Publisher
	Redis    redis.Cmdable // optional
	Service  string
	Limit    int
	Log      *slog.Logger
	Now      func() time.Time
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = r.now()
	}

	env := kafkax.NewEnvelope(EventActivityRecorded, r.Service, e.TargetID, e)
	if r.Producer != nil {
		r.Producer.Publish([]byte(e.TargetID), kafkax.MustMarshal(env), env.Headers()...)
	}

	if r.Redis != nil {
		b := kafkax.MustMarshal(e)
		pipe := r.Redis.TxPipeline()
		pipe.LPush(ctx, redisx.KeyActivityLog, b)
		pipe.LTrim(ctx, redisx.KeyActivityLog, 0, int64(r.limit()-1))
		if _, err := pipe.Exec(ctx); err != nil {
			r.Log.Warn("activity feed push failed", logger.Err(err))
		}
	}

	r.Log.Info("activity",
		slog.String("action", e.Action),
		slog.String("target", e.TargetType+":"+e.TargetID),
		slog.String("actor", e.Actor),
	)
}

func (r *Recorder) limit() int {
	if r.Limit <= 0 {
		return 100
	}
	return r.Limit
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Feed reads recent entries from Redis and falls back to Postgres.
type Feed struct {
	Redis redis.Cmdable
	Repo  Store
	Log   *slog.Logger
}

type Store interface {
	Insert(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

func (f *Feed) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	if f.Redis != nil {
		raw, err := f.Redis.LRange(ctx, redisx.KeyActivityLog, 0, int64(limit-1)).Result()
		if err == nil && len(raw) > 0 {
			out := make([]Entry, 0, len(raw))
			for _, s := range raw {
				var e Entry
				if err := json.Unmarshal([]byte(s), &e); err != nil {
					f.Log.Warn("malformed activity entry skipped", logger.Err(err))
					continue
				}
				out = append(out, e)
			}
			return out, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			f.Log.Warn("activity feed read failed", logger.Err(err))
		}
	}
	return f.Repo.Recent(ctx, limit)
}

package activity

import (
	"context"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/gametrust/internal/kafka"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Deduper remembers processed event ids.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type RedisDeduper struct {
	Redis   redis.Cmdable
	Service string
}

func (d RedisDeduper) key(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
}

func (d RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.Redis, d.key(eventID))
}

func (d RedisDeduper) Mark(ctx context.Context, eventID string) error {
	_, err := redisx.MarkOnce(ctx, d.Redis, d.key(eventID), redisx.TTLDedup)
	return err
}

// Persister stores activity events coming off the stream.
type Persister struct {
	Store Store
	Dedup Deduper
	Log   *slog.Logger
}

// HandleMessage is installed as the consumer handler.
func (p *Persister) HandleMessage(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		// poison message: log and let it be committed
		p.Log.Error("undecodable activity event", slog.Int64("offset", m.Offset), logger.Err(err))
		return nil
	}
	if env.EventType != EventActivityRecorded {
		return nil
	}

	if p.Dedup != nil {
		seen, err := p.Dedup.Seen(ctx, env.EventID)
		if err != nil {
			p.Log.Warn("dedup check failed, inserting anyway", logger.Err(err))
		} else if seen {
			return nil
		}
	}

	e, err := kafkax.UnwrapPayload[Entry](env.Payload)
	if err != nil {
		p.Log.Error("undecodable activity payload", slog.String("event_id", env.EventID), logger.Err(err))
		return nil
	}
	if err := p.Store.Insert(ctx, e); err != nil {
		return err
	}
	if p.Dedup != nil {
		if err := p.Dedup.Mark(ctx, env.EventID); err != nil {
			p.Log.Warn("dedup mark failed", slog.String("event_id", env.EventID), logger.Err(err))
		}
	}
	return nil
}

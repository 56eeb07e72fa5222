package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w       messageWriter
	topic   string
	log     *slog.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}
	once    sync.Once
}

func NewProducer(brokers []string, topic string, buf int, log *slog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		topic:   topic,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until Close is called. Remaining messages are flushed first,
// even when ctx is already cancelled; ctx only supplies values to the writer.
func (p *Producer) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.log.Error("kafka write failed", slog.String("topic", p.topic), logger.Err(err))
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Error("kafka writer close failed", logger.Err(err))
		}
	}()
}

// Publish enqueues a message without blocking. A full inbox drops the message.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	defer func() {
		// publishing after Close must not crash the caller
		if recover() != nil {
			p.log.Warn("kafka publish after close dropped", slog.String("topic", p.topic))
		}
	}()
	select {
	case p.inbox <- m:
	default:
		p.log.Warn("kafka inbox full, message dropped", slog.String("topic", p.topic))
	}
}

// Close stops accepting messages; the loop flushes what is queued and exits.
func (p *Producer) Close() { p.once.Do(func() { close(p.inbox) }) }

// WaitClosed blocks until the write loop is done.
func (p *Producer) WaitClosed() { <-p.closeCh }

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/config"
	kafkax "github.com/ariefcatur/gametrust/internal/kafka"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/postgres"
	"github.com/ariefcatur/gametrust/internal/redisx"
)

// activity drains the admin activity topic into postgres.
func main() {
	cfg := config.MustLoad()
	service := cfg.ServiceName + "-activity"
	log := logger.Setup(cfg.Env).With(slog.String("service", service))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", logger.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	p := &activity.Persister{
		Store: &activity.Repo{DB: db},
		Dedup: activity.RedisDeduper{Redis: rdb, Service: service},
		Log:   log,
	}

	workers := max(cfg.Activity.Workers, 1)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Activity.Group, cfg.Activity.Topic, workers, log)
	log.Info("activity consumer started",
		slog.String("group", cfg.Activity.Group),
		slog.String("topic", cfg.Activity.Topic),
		slog.Int("workers", workers))

	if err := cons.Start(ctx, p.HandleMessage); err != nil {
		log.Error("consumer exit", logger.Err(err))
		os.Exit(1)
	}
	log.Info("activity consumer stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/auth"
	"github.com/ariefcatur/gametrust/internal/config"
	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/drafts"
	"github.com/ariefcatur/gametrust/internal/httpx"
	kafkax "github.com/ariefcatur/gametrust/internal/kafka"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/postgres"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/ariefcatur/gametrust/internal/revenue"
	"github.com/ariefcatur/gametrust/internal/reviews"
	"github.com/ariefcatur/gametrust/internal/sellers"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/ariefcatur/gametrust/internal/verifications"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env).With(slog.String("service", cfg.ServiceName))

	ctx, cancel := context.WithCancel(context.Background())
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

	// Kafka producer for the activity stream
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.Activity.Topic, 1024, log)
	prod.Start(ctx)

	rec := &activity.Recorder{
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		Limit:    cfg.Activity.LogLimit,
		Log:      log,
	}

	// Services
	usersSvc := &users.Service{Store: &users.Repo{DB: db}, Activity: rec}
	listingsSvc := &listings.Service{Store: &listings.Repo{DB: db}, Activity: rec}
	reviewsSvc := &reviews.Service{Store: &reviews.Repo{DB: db}}

	autosave := drafts.NewAutosaver(&drafts.RedisStore{Redis: rdb, TTL: cfg.Drafts.TTL, Log: log},
		cfg.Drafts.AutosaveInterval, log)
	autosave.Start(ctx)

	api := &httpx.API{
		Disputes: &disputes.Service{Store: &disputes.Repo{DB: db}, Activity: rec},
		Listings: listingsSvc,
		Users:    usersSvc,
		Verifications: &verifications.Service{
			Store:    &verifications.Repo{DB: db},
			Users:    usersSvc,
			Activity: rec,
		},
		Revenue: &revenue.Service{
			Store:          &revenue.Repo{DB: db},
			CommissionRate: cfg.CommissionRate,
			Users:          usersSvc,
			Listings: revenue.ListingCloserFunc(func(ctx context.Context, id, actor string) error {
				_, err := listingsSvc.MarkSold(ctx, id, actor)
				return err
			}),
			Activity: rec,
			Log:      log,
		},
		Reviews: reviewsSvc,
		Sellers: &sellers.Service{Users: usersSvc, Listings: listingsSvc, Reviews: reviewsSvc},
		Drafts: &drafts.Service{
			Store:    &drafts.RedisStore{Redis: rdb, TTL: cfg.Drafts.TTL, Log: log},
			Autosave: autosave,
			Listings: listingsSvc,
			Activity: rec,
		},
		Feed:      &activity.Feed{Redis: rdb, Repo: &activity.Repo{DB: db}, Log: log},
		Auth:      auth.NewIssuer(cfg.JWTSecret),
		Snapshots: httpx.NewSnapshots(rdb, cfg.SnapshotTTL, log),
		Log:       log,
	}

	router := httpx.NewRouter()
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", logger.Err(err))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("http shutdown", logger.Err(err))
	}
	autosave.Close() // flush buffered drafts before redis goes away
	prod.Close()
	prod.WaitClosed()
	cancel()
}

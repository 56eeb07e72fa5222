package main

import (
	"flag"
	"os"

	"github.com/ariefcatur/gametrust/internal/config"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/postgres"
)

func main() {
	cfg := config.MustLoad()
	dsn := flag.String("dsn", cfg.PostgresDSN, "postgres connection string")
	flag.Parse()

	log := logger.Setup(cfg.Env)

	applied, err := postgres.Migrate(*dsn)
	if err != nil {
		log.Error("migrate", logger.Err(err))
		os.Exit(1)
	}
	if !applied {
		log.Info("no migrations to apply")
		return
	}
	log.Info("migrations applied")
}

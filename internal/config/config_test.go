package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8081" || cfg.CommissionRate != 0.05 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Drafts.AutosaveInterval != 30*time.Second || cfg.Activity.Topic != "admin.activity" {
		t.Fatalf("nested defaults = %+v %+v", cfg.Drafts, cfg.Activity)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("COMMISSION_RATE", "0.1")
	t.Setenv("DRAFT_AUTOSAVE_INTERVAL", "5s")
	t.Setenv("ACTIVITY_WORKERS", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.CommissionRate != 0.1 || cfg.Drafts.AutosaveInterval != 5*time.Second || cfg.Activity.Workers != 9 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "env: prod\nhttp_addr: \":9000\"\njwt_secret: from-file\ndrafts:\n  ttl: 24h\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "prod" || cfg.HTTPAddr != ":9000" || cfg.JWTSecret != "from-file" || cfg.Drafts.TTL != 24*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SnapshotTTL != 2*time.Minute {
		t.Fatalf("unset fields keep defaults, got %v", cfg.SnapshotTTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadRejectsDefaultSecretInProd(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("APP_ENV", "prod")

	for _, secret := range []string{"", DevJWTSecret} {
		t.Setenv("JWT_SECRET", secret)
		if _, err := Load(); !errors.Is(err, ErrWeakSecret) {
			t.Fatalf("secret %q: err = %v, want ErrWeakSecret", secret, err)
		}
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	if err != nil || cfg.JWTSecret != "a-real-secret" {
		t.Fatalf("load = %+v, %v", cfg, err)
	}

	// Outside prod the development default is still accepted.
	t.Setenv("APP_ENV", "local")
	t.Setenv("JWT_SECRET", DevJWTSecret)
	if _, err := Load(); err != nil {
		t.Fatalf("local load: %v", err)
	}
}

package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HTTP_PORT", "8000")
	t.Setenv("DATABASE_URL", "postgres://localhost/swipehire")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Feed.BatchSize != 5 || cfg.Feed.TopK != 3000 {
		t.Fatalf("unexpected feed defaults %+v", cfg.Feed)
	}
	if cfg.JWT.AccessExpiresIn != 15*time.Minute {
		t.Fatalf("unexpected access ttl %v", cfg.JWT.AccessExpiresIn)
	}
	if cfg.App.DevResumeStub {
		t.Fatalf("dev stub must be off by default")
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "r")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected missing env error, got %v", err)
	}
	for _, key := range []string{"HTTP_PORT", "JWT_ACCESS_SECRET", "DATABASE_URL or DB_HOST"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FEED_BATCH_SIZE", "five")
	t.Setenv("DEV_RESUME_STUB", "maybe")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "FEED_BATCH_SIZE") || !strings.Contains(err.Error(), "DEV_RESUME_STUB") {
		t.Fatalf("expected invalid env error, got %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"swipehire/internal/feedclient"
	"swipehire/internal/localstore"
	"swipehire/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	api := flag.String("api", envOr("SWIPEHIRE_API", "http://localhost:8080"), "backend base URL")
	storePath := flag.String("store", envOr("SWIPEHIRE_STORE", defaultStorePath()), "local state file")
	token := flag.String("token", os.Getenv("SWIPEHIRE_TOKEN"), "access token (skips login)")
	level := flag.String("log-level", envOr("SWIPEHIRE_LOG_LEVEL", "warn"), "log level")
	timeout := flag.Duration("timeout", 30*time.Second, "per request timeout")
	flag.Parse()

	logger.InitTo(os.Stderr, "development", *level)
	log := logger.Component("swipehire")

	store, err := localstore.Open(*storePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *storePath).Msg("failed to open local store")
	}

	client := feedclient.NewClient(*api,
		feedclient.WithClientLogger(log),
		feedclient.WithHTTPClient(&http.Client{Timeout: *timeout}),
	)
	if t := strings.TrimSpace(*token); t != "" {
		client.SetToken(t)
	}

	sh := newShell(client, store, os.Stdout, log)
	sh.timeout = *timeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sh.Run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("shell stopped")
	}
	sh.Close()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "swipehire.json"
	}
	return filepath.Join(dir, "swipehire", "state.json")
}

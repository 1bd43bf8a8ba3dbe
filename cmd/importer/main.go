package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"swipehire/internal/app"
	"swipehire/internal/config"
	"swipehire/internal/database/migration"
	"swipehire/internal/database/seeder"
	"swipehire/internal/logger"
	"swipehire/internal/scraper"
	"swipehire/migrations"
)

func main() {
	listURL := flag.String("url", "", "careers listing URL (overrides IMPORT_LIST_URL)")
	source := flag.String("source", "", "source name stored on each job (overrides IMPORT_SOURCE_NAME)")
	workers := flag.Int("workers", 0, "detail page workers (overrides IMPORT_WORKERS)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall import timeout")
	seed := flag.Bool("seed", false, "insert the sample catalog before importing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("", "info")
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log := logger.Component("importer")

	if v := strings.TrimSpace(*listURL); v != "" {
		cfg.Importer.ListURL = v
	}
	if v := strings.TrimSpace(*source); v != "" {
		cfg.Importer.SourceName = v
	}
	if *workers > 0 {
		cfg.Importer.Workers = *workers
	}
	if cfg.Importer.ListURL == "" && !*seed {
		log.Fatal().Msg("provide -url, IMPORT_LIST_URL or -seed")
	}

	c, err := app.NewContainer(cfg, logger.Get())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init container")
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	r := migration.Runner{Dir: cfg.Database.MigrationsDir, FS: migrations.FS, Logger: logger.Component("migration")}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *seed {
		sr := seeder.Runner{Seeders: seeder.Defaults(), Logger: logger.Component("seeder")}
		if err := sr.Run(ctx, c.DB); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		if cfg.Importer.ListURL == "" {
			return
		}
	}

	stats, err := c.Importer.Import(ctx, scraper.TargetFromConfig(cfg.Importer))
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().
		Int("listed", stats.Listed).
		Int("upserted", stats.Upserted).
		Int("failed", stats.Failed).
		Msg("import done")
}

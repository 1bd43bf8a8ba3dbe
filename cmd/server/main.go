package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipehire/internal/app"
	"swipehire/internal/config"
	"swipehire/internal/database/migration"
	"swipehire/internal/logger"
	"swipehire/internal/scheduler"
	"swipehire/internal/scraper"
	"swipehire/internal/ws"
	"swipehire/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("", "info")
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log := logger.Component("server")

	c, err := app.NewContainer(cfg, logger.Get())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init container")
	}

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	r := migration.Runner{Dir: cfg.Database.MigrationsDir, FS: migrations.FS, Logger: logger.Component("migration")}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		migCancel()
		_ = c.Close()
		log.Fatal().Err(err).Msg("migration failed")
	}
	migCancel()

	bootstrap, cleanup, err := app.Bootstrap(cfg, c)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap app")
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Error().Err(err).Msg("cleanup error")
		}
	}()

	ws.SetDefaultHub(c.Hub)
	go c.Hub.Run()

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	var sched *scheduler.Scheduler
	if cfg.Importer.IntervalHours > 0 && cfg.Importer.ListURL != "" {
		sched = scheduler.New(c.Importer, scraper.TargetFromConfig(cfg.Importer), cfg.Importer.IntervalHours, logger.Get())
		if err := sched.Start(runCtx); err != nil {
			log.Error().Err(err).Msg("scheduler not started")
			sched = nil
		}
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid HTTP port")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()
	log.Info().Str("addr", addr).Str("env", cfg.App.Environment).Msg("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		stopRun()
		if sched != nil {
			sched.Stop()
		}
		c.Hub.Shutdown(2 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}
}

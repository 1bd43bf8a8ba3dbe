// Package scheduler runs the catalog import on a fixed interval.
package scheduler

import (
	"context"
	"fmt"

	"swipehire/internal/scraper"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Importer is the part of the careers importer the scheduler drives.
type Importer interface {
	Import(ctx context.Context, target scraper.CareersTarget) (scraper.ImportStats, error)
}

// Scheduler wraps robfig/cron. Overlapping runs are skipped.
type Scheduler struct {
	cron     *cron.Cron
	importer Importer
	target   scraper.CareersTarget
	spec     string
	logger   zerolog.Logger
}

func New(importer Importer, target scraper.CareersTarget, intervalHours int, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cron.PrintfLogger(&logger)
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		importer: importer,
		target:   target,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
		logger:   logger,
	}
}

// Start registers the job, starts the scheduler and runs one import right
// away so a fresh deployment has a catalog.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("cron started")

	go s.RunOnce(ctx)
	return nil
}

// Stop waits for a running import to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("cron stopped")
}

func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	stats, err := s.importer.Import(ctx, s.target)
	if err != nil {
		s.logger.Error().Err(err).Str("source", s.target.SourceName).Msg("import failed")
		return
	}
	s.logger.Debug().Int("upserted", stats.Upserted).Msg("import cycle complete")
}

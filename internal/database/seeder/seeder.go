// Package seeder fills an empty database with sample data for local runs.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swipehire/internal/database"

	"github.com/rs/zerolog"
)

// Seeder writes one data set and reports how many rows it added.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) (int64, error)
}

func Defaults() []Seeder {
	return []Seeder{SampleCatalogSeeder{}}
}

type Runner struct {
	Seeders []Seeder
	Logger  zerolog.Logger
}

// Run applies the seeders in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("seeder: nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		n, err := s.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Logger.Info().
			Str("seeder", s.Name()).
			Int64("rows", n).
			Dur("took", time.Since(start)).
			Msg("seeded")
	}
	return nil
}

package usecase

import (
	"context"
	"errors"

	"swipehire/internal/domain/job"
	"swipehire/internal/domain/user"
	"swipehire/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FeedCursor is one live connection's position in a user's ranked list.
// It is not safe for concurrent use; each connection owns one.
type FeedCursor struct {
	UserID   uuid.UUID
	Position int

	ids    []string
	scores []float64
}

func (c *FeedCursor) Total() int { return len(c.ids) }

func (c *FeedCursor) Exhausted() bool { return c.Position >= len(c.ids) }

type FeedUsecase interface {
	Open(ctx context.Context, userID uuid.UUID) (*FeedCursor, error)
	Next(ctx context.Context, fc *FeedCursor) (job.Job, bool, error)
}

type Feed struct {
	profiles  user.ProfileRepository
	jobs      job.Repository
	cache     JSONCache
	batchSize int
	logger    zerolog.Logger
}

func NewFeedUsecase(profiles user.ProfileRepository, jobs job.Repository, c JSONCache, batchSize int, logger zerolog.Logger) *Feed {
	if c == nil {
		c = noCache{}
	}
	if batchSize < 0 {
		batchSize = 0
	}
	return &Feed{
		profiles:  profiles,
		jobs:      jobs,
		cache:     c,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "feed").Logger(),
	}
}

// Open snapshots the ranking and positions the cursor just past the window
// the client already fetched over HTTP.
func (f *Feed) Open(ctx context.Context, userID uuid.UUID) (*FeedCursor, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	p, err := f.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, ErrInternal
	}

	start := clampCursor(p.FeedCursor+f.batchSize, len(p.RankedJobIDs))
	return &FeedCursor{
		UserID:   userID,
		Position: start,
		ids:      p.RankedJobIDs,
		scores:   p.RankedScores,
	}, nil
}

// Next returns the job at the cursor and advances it. ok is false once the
// list is exhausted. Ids missing from the catalog are skipped. The stored
// cursor follows the connection's position.
func (f *Feed) Next(ctx context.Context, fc *FeedCursor) (job.Job, bool, error) {
	if fc == nil {
		return job.Job{}, false, ErrInternal
	}

	for !fc.Exhausted() {
		i := fc.Position
		j, err := f.lookup(ctx, fc.ids[i])
		fc.Position++
		if err != nil {
			if errors.Is(err, job.ErrNotFound) {
				f.logger.Debug().Str("job_id", fc.ids[i]).Msg("ranked job missing from catalog, skipping")
				continue
			}
			fc.Position--
			return job.Job{}, false, ErrInternal
		}
		if i < len(fc.scores) {
			j.Score = fc.scores[i]
		}
		f.persist(ctx, fc)
		return j, true, nil
	}

	f.persist(ctx, fc)
	return job.Job{}, false, nil
}

func (f *Feed) lookup(ctx context.Context, id string) (job.Job, error) {
	key := cache.JobKey(id)
	var cached job.Job
	if ok, err := f.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	cj, err := f.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Job{}, err
	}
	j := cj.Ranked(0)
	if err := f.cache.SetJSON(ctx, key, j, jobCacheTTL); err != nil {
		f.logger.Debug().Err(err).Str("key", key).Msg("cache job")
	}
	return j, nil
}

func (f *Feed) persist(ctx context.Context, fc *FeedCursor) {
	if err := f.profiles.SetCursor(ctx, fc.UserID, fc.Position); err != nil {
		f.logger.Warn().Err(err).Str("user_id", fc.UserID.String()).Int("cursor", fc.Position).Msg("persist feed cursor")
	}
}

package usecase

import (
	"context"
	"errors"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/domain/user"
	"swipehire/internal/infrastructure/cache"
	"swipehire/internal/ranking"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrRankingInProgress = errors.New("ranking already in progress")

const (
	rankingLockTTL = 2 * time.Minute
	jobCacheTTL    = 30 * time.Minute
)

// Ranker scores the whole catalog against a user's job dict and stores the
// ordered ids on the profile.
type Ranker struct {
	jobs     job.Repository
	profiles user.ProfileRepository
	cache    JSONCache
	logger   zerolog.Logger
	topK     int
	warm     int
}

func NewRanker(jobs job.Repository, profiles user.ProfileRepository, c JSONCache, topK, warm int, logger zerolog.Logger) *Ranker {
	if c == nil {
		c = noCache{}
	}
	if topK <= 0 {
		topK = ranking.DefaultTopK
	}
	if warm < 0 {
		warm = 0
	}
	return &Ranker{
		jobs:     jobs,
		profiles: profiles,
		cache:    c,
		logger:   logger.With().Str("component", "ranker").Logger(),
		topK:     topK,
		warm:     warm,
	}
}

// Recompute replaces the user's ranking. Concurrent recomputes for the same
// user are rejected with ErrRankingInProgress.
func (r *Ranker) Recompute(ctx context.Context, userID uuid.UUID, jobDict map[string]any) ([]job.Job, error) {
	lockKey := cache.RankingLockKey(userID.String())
	ok, err := r.cache.SetIfNotExists(ctx, lockKey, "1", rankingLockTTL)
	if err != nil {
		r.logger.Warn().Err(err).Msg("ranking lock unavailable, continuing")
	}
	if !ok {
		return nil, ErrRankingInProgress
	}
	defer func() {
		if err := r.cache.Delete(context.WithoutCancel(ctx), lockKey); err != nil {
			r.logger.Warn().Err(err).Str("key", lockKey).Msg("release ranking lock")
		}
	}()

	start := time.Now()
	catalog, err := r.jobs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ranked := ranking.Rank(jobDict, catalog, r.topK)
	ids, scores := ranking.IDsAndScores(ranked)
	if err := r.profiles.SaveRanking(ctx, userID, ids, scores); err != nil {
		return nil, err
	}

	// Cached jobs are shared between users, so they carry no score.
	for i := 0; i < len(ranked) && i < r.warm; i++ {
		j := ranked[i]
		j.Score = 0
		if err := r.cache.SetJSON(ctx, cache.JobKey(j.ID), j, jobCacheTTL); err != nil {
			break
		}
	}

	r.logger.Info().
		Str("user_id", userID.String()).
		Int("catalog", len(catalog)).
		Int("ranked", len(ranked)).
		Dur("took", time.Since(start)).
		Msg("ranking recomputed")
	return ranked, nil
}

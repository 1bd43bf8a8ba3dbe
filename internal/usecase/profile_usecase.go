package usecase

import (
	"context"
	"errors"

	"swipehire/internal/domain/job"
	"swipehire/internal/domain/user"
	"swipehire/internal/resume"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrUnsupportedFile = errors.New("only PDF and DOCX files are supported")
	ErrNoResumeText    = errors.New("could not extract text from resume")
	ErrResumeParse     = errors.New("could not parse resume")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmptyJobDict    = errors.New("job_dict is required")
)

// TextExtractor turns an uploaded resume into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// ParseResult is what an upload hands back to the client.
type ParseResult struct {
	UID         uuid.UUID        `json:"uid"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	InfoDict    map[string]any   `json:"info_dict"`
	JobDict     map[string]any   `json:"job_dict"`
	DynamicKeys user.DynamicKeys `json:"dynamic_keys"`
}

// Batch is one window of the user's ranked list.
type Batch struct {
	Jobs  []job.Job
	Total int
}

type ProfileUsecase interface {
	ParseResume(ctx context.Context, userID uuid.UUID, email, filename string, data []byte) (ParseResult, error)
	NextBatch(ctx context.Context, userID uuid.UUID) (Batch, error)
	SaveJobDict(ctx context.Context, userID uuid.UUID, jobDict map[string]any) (Batch, error)
	Me(ctx context.Context, userID uuid.UUID) (user.Profile, error)
}

type Profile struct {
	profiles  user.ProfileRepository
	jobs      job.Repository
	extractor TextExtractor
	parser    resume.Parser
	ranker    *Ranker
	batchSize int
	logger    zerolog.Logger
}

func NewProfileUsecase(
	profiles user.ProfileRepository,
	jobs job.Repository,
	extractor TextExtractor,
	parser resume.Parser,
	ranker *Ranker,
	batchSize int,
	logger zerolog.Logger,
) *Profile {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Profile{
		profiles:  profiles,
		jobs:      jobs,
		extractor: extractor,
		parser:    parser,
		ranker:    ranker,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "profile").Logger(),
	}
}

// ParseResume extracts, parses, stores and ranks in one go. The returned
// email prefers the resume's own address over the account's.
func (u *Profile) ParseResume(ctx context.Context, userID uuid.UUID, email, filename string, data []byte) (ParseResult, error) {
	if userID == uuid.Nil {
		return ParseResult{}, ErrUnauthorized
	}
	if _, err := resume.KindOf(filename); err != nil {
		return ParseResult{}, ErrUnsupportedFile
	}

	text, err := u.extractor.Extract(ctx, filename, data)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrUnsupportedType):
			return ParseResult{}, ErrUnsupportedFile
		case errors.Is(err, resume.ErrNoText):
			return ParseResult{}, ErrNoResumeText
		}
		u.logger.Error().Err(err).Str("file", filename).Msg("resume extraction failed")
		return ParseResult{}, ErrNoResumeText
	}

	parsed, err := u.parser.Parse(ctx, text)
	if err != nil {
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("resume parse failed")
		return ParseResult{}, ErrResumeParse
	}

	if err := u.profiles.SaveParsed(ctx, userID, parsed.InfoDict, parsed.JobDict, parsed.NewKeysTracker); err != nil {
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("save parsed profile")
		return ParseResult{}, ErrInternal
	}
	if _, err := u.ranker.Recompute(ctx, userID, parsed.JobDict); err != nil && !errors.Is(err, ErrRankingInProgress) {
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("ranking after upload")
		return ParseResult{}, ErrInternal
	}

	resEmail := parsed.Email()
	if resEmail == "" {
		resEmail = email
	}
	return ParseResult{
		UID:         userID,
		Name:        parsed.Name(),
		Email:       resEmail,
		InfoDict:    parsed.InfoDict,
		JobDict:     parsed.JobDict,
		DynamicKeys: parsed.NewKeysTracker,
	}, nil
}

// NextBatch returns the window [cursor, cursor+batch) of the ranked list. It
// does not move the cursor; the live feed starts right after this window.
func (u *Profile) NextBatch(ctx context.Context, userID uuid.UUID) (Batch, error) {
	p, err := u.load(ctx, userID)
	if err != nil {
		return Batch{}, err
	}

	start := clampCursor(p.FeedCursor, len(p.RankedJobIDs))
	end := start + u.batchSize
	if end > len(p.RankedJobIDs) {
		end = len(p.RankedJobIDs)
	}

	jobs, err := u.resolve(ctx, p, start, end)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Jobs: jobs, Total: len(p.RankedJobIDs)}, nil
}

// SaveJobDict replaces the job preferences, re-ranks and returns the first
// window of the new ranking.
func (u *Profile) SaveJobDict(ctx context.Context, userID uuid.UUID, jobDict map[string]any) (Batch, error) {
	if userID == uuid.Nil {
		return Batch{}, ErrUnauthorized
	}
	if len(jobDict) == 0 {
		return Batch{}, ErrEmptyJobDict
	}

	if err := u.profiles.SaveJobDict(ctx, userID, jobDict); err != nil {
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("save job dict")
		return Batch{}, ErrInternal
	}
	if _, err := u.ranker.Recompute(ctx, userID, jobDict); err != nil && !errors.Is(err, ErrRankingInProgress) {
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("ranking after job dict update")
		return Batch{}, ErrInternal
	}
	return u.NextBatch(ctx, userID)
}

func (u *Profile) Me(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	return u.load(ctx, userID)
}

func (u *Profile) load(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	if userID == uuid.Nil {
		return user.Profile{}, ErrUnauthorized
	}
	p, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrProfileNotFound) {
			return user.Profile{}, ErrProfileNotFound
		}
		u.logger.Error().Err(err).Str("user_id", userID.String()).Msg("load profile")
		return user.Profile{}, ErrInternal
	}
	return p, nil
}

// resolve looks up ranked ids [start, end) in order. Ids no longer in the
// catalog are skipped.
func (u *Profile) resolve(ctx context.Context, p user.Profile, start, end int) ([]job.Job, error) {
	out := make([]job.Job, 0, end-start)
	if start >= end {
		return out, nil
	}

	ids := p.RankedJobIDs[start:end]
	found, err := u.jobs.GetByIDs(ctx, ids)
	if err != nil {
		u.logger.Error().Err(err).Msg("resolve ranked jobs")
		return nil, ErrInternal
	}
	for i, id := range ids {
		cj, ok := found[id]
		if !ok {
			continue
		}
		out = append(out, cj.Ranked(p.ScoreAt(start+i)))
	}
	return out, nil
}

func clampCursor(cursor, n int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > n {
		return n
	}
	return cursor
}

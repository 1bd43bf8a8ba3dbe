package app

import (
	"context"
	"errors"
	"time"

	"swipehire/internal/config"
	"swipehire/internal/database"
	dbpostgres "swipehire/internal/database/postgres"
	"swipehire/internal/infrastructure/cache"
	"swipehire/internal/pkg/jwt"
	"swipehire/internal/repository"
	"swipehire/internal/resume"
	"swipehire/internal/scraper"
	"swipehire/internal/usecase"
	"swipehire/internal/ws"

	"github.com/rs/zerolog"
)

// jobsToWarm is how many top-ranked jobs are cached after each ranking.
const jobsToWarm = 20

// Container holds the process-wide dependencies. Build it once per process.
type Container struct {
	Config config.Config
	Logger zerolog.Logger

	DB    database.DB
	Cache *cache.Redis
	JWT   *jwt.HMACService
	Hub   *ws.Hub

	Users    *repository.PostgresUserRepository
	Profiles *repository.PostgresProfileRepository
	Jobs     *repository.PostgresJobRepository

	Auth     *usecase.Auth
	Profile  *usecase.Profile
	Feed     *usecase.Feed
	Importer *scraper.CareersImporter
	Script   resume.ScriptRunner
}

func NewContainer(cfg config.Config, logger zerolog.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}
	c.Cache = cache.NewRedis(cfg.Redis, logger)
	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	c.Hub = ws.NewHub(logger)

	c.Users = repository.NewPostgresUserRepository(db)
	c.Profiles = repository.NewPostgresProfileRepository(db)
	c.Jobs = repository.NewPostgresJobRepository(db)

	c.Auth = usecase.NewAuthUsecase(c.Users, c.JWT)

	ranker := usecase.NewRanker(c.Jobs, c.Profiles, c.Cache, cfg.Feed.TopK, jobsToWarm, logger)
	extractor := resume.Extractor{PDFToTextPath: cfg.Resume.PDFToTextPath}
	c.Profile = usecase.NewProfileUsecase(c.Profiles, c.Jobs, extractor, newResumeParser(cfg.Resume, logger), ranker, cfg.Feed.BatchSize, logger)
	c.Feed = usecase.NewFeedUsecase(c.Profiles, c.Jobs, c.Cache, cfg.Feed.BatchSize, logger)

	c.Importer = scraper.NewCareersImporter(c.Jobs, logger,
		scraper.WithCache(c.Cache),
		scraper.WithConcurrency(cfg.Importer.Workers, cfg.Importer.RatePerSecond),
		scraper.WithImportHook(ws.NotifyCatalogUpdated),
	)
	c.Script = resume.ScriptRunner{Path: cfg.Resume.ScriptPath}

	return c, nil
}

// newResumeParser prefers the LLM and falls back to the fixture so a local
// setup without an API key still works end to end.
func newResumeParser(cfg config.ResumeConfig, logger zerolog.Logger) resume.Parser {
	p, err := resume.NewLLMParser(cfg, logger)
	if err == nil {
		return p
	}
	if errors.Is(err, resume.ErrLLMNotConfigured) {
		logger.Warn().Msg("GROQ_KEY not set, resumes will be answered with the sample profile")
	} else {
		logger.Error().Err(err).Msg("resume LLM unavailable, using the sample profile")
	}
	return resume.FixtureParser{}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swipehire/internal/config"
	"swipehire/internal/domain/job"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

var ErrNoTarget = errors.New("import list URL is not configured")

// CareersTarget describes one careers listing page and where the fields live
// on its detail pages.
type CareersTarget struct {
	SourceName       string
	ListURL          string
	LinkSelector     string
	TitleSelector    string
	CompanySelector  string
	LocationSelector string
	TagSelector      string
	DateSelector     string
	BodySelector     string
}

func TargetFromConfig(cfg config.ImporterConfig) CareersTarget {
	return CareersTarget{
		SourceName:       cfg.SourceName,
		ListURL:          cfg.ListURL,
		LinkSelector:     cfg.LinkSelector,
		TitleSelector:    cfg.TitleSelector,
		CompanySelector:  cfg.CompanySelector,
		LocationSelector: cfg.LocationSelector,
		TagSelector:      cfg.TagSelector,
		DateSelector:     cfg.DateSelector,
		BodySelector:     cfg.BodySelector,
	}
}

func (t CareersTarget) withDefaults() CareersTarget {
	if strings.TrimSpace(t.SourceName) == "" {
		t.SourceName = hostFromURL(t.ListURL)
	}
	if strings.TrimSpace(t.LinkSelector) == "" {
		t.LinkSelector = "a"
	}
	if strings.TrimSpace(t.TitleSelector) == "" {
		t.TitleSelector = "title"
	}
	if strings.TrimSpace(t.BodySelector) == "" {
		t.BodySelector = "body"
	}
	return t
}

// CatalogWriter is where imported jobs go.
type CatalogWriter interface {
	Upsert(ctx context.Context, jobs []job.CatalogJob) (int, error)
}

// CacheInvalidator drops cached jobs after an import.
type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type ImportStats struct {
	Listed   int
	Fetched  int
	Failed   int
	Upserted int
}

// CareersImporter scrapes a careers listing and its detail pages into the
// job catalog.
type CareersImporter struct {
	jobs       CatalogWriter
	cache      CacheInvalidator
	workers    int
	rps        int
	logger     zerolog.Logger
	onImported func(source string, n int)
}

type ImporterOption func(*CareersImporter)

func WithCache(c CacheInvalidator) ImporterOption {
	return func(i *CareersImporter) { i.cache = c }
}

func WithConcurrency(workers, rps int) ImporterOption {
	return func(i *CareersImporter) {
		i.workers = workers
		i.rps = rps
	}
}

// WithImportHook is called after every import that stored at least one job.
func WithImportHook(fn func(source string, n int)) ImporterOption {
	return func(i *CareersImporter) { i.onImported = fn }
}

func NewCareersImporter(jobs CatalogWriter, logger zerolog.Logger, opts ...ImporterOption) *CareersImporter {
	i := &CareersImporter{
		jobs:    jobs,
		workers: 4,
		rps:     3,
		logger:  logger.With().Str("component", "importer").Logger(),
	}
	for _, o := range opts {
		o(i)
	}
	if i.workers <= 0 {
		i.workers = 1
	}
	return i
}

func (s *CareersImporter) Import(ctx context.Context, target CareersTarget) (ImportStats, error) {
	var stats ImportStats
	if s == nil || s.jobs == nil {
		return stats, fmt.Errorf("nil importer/catalog")
	}
	if strings.TrimSpace(target.ListURL) == "" {
		return stats, ErrNoTarget
	}
	t := target.withDefaults()
	start := time.Now()

	links, err := s.scrapeListingPage(ctx, t)
	if err != nil {
		return stats, fmt.Errorf("listing %s: %w", t.ListURL, err)
	}
	stats.Listed = len(links)

	pool := newDetailPool(s.workers, s.rps, func(ctx context.Context, link string) (job.CatalogJob, error) {
		return s.scrapeDetailPage(ctx, t, link)
	})
	var fetched []job.CatalogJob
	for res := range pool.fetchAll(ctx, links) {
		switch {
		case res.Err != nil:
			stats.Failed++
			s.logger.Warn().Err(res.Err).Str("source", t.SourceName).Str("link", res.Link).Msg("job detail failed")
		case strings.TrimSpace(res.Job.Title) == "":
			stats.Failed++
		default:
			fetched = append(fetched, res.Job)
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	stats.Fetched = len(fetched)

	n, err := s.jobs.Upsert(ctx, fetched)
	if err != nil {
		return stats, fmt.Errorf("store jobs: %w", err)
	}
	stats.Upserted = n

	if n > 0 {
		if s.cache != nil {
			if err := s.cache.DeleteByPattern(ctx, "job:*"); err != nil {
				s.logger.Warn().Err(err).Msg("invalidate job cache")
			}
		}
		if s.onImported != nil {
			s.onImported(t.SourceName, n)
		}
	}

	s.logger.Info().
		Str("source", t.SourceName).
		Int("listed", stats.Listed).
		Int("fetched", stats.Fetched).
		Int("failed", stats.Failed).
		Int("upserted", stats.Upserted).
		Dur("took", time.Since(start)).
		Msg("import finished")
	return stats, nil
}

func newCollector(rawURL string) *colly.Collector {
	allowed := hostFromURL(rawURL)
	var c *colly.Collector
	if allowed == "" {
		c = colly.NewCollector()
	} else {
		c = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 250 * time.Millisecond})
	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})
	return c
}

func (s *CareersImporter) scrapeListingPage(ctx context.Context, t CareersTarget) ([]string, error) {
	c := newCollector(t.ListURL)

	links := make([]string, 0)
	dedup := map[string]struct{}{}
	c.OnHTML(t.LinkSelector, func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs := normalizeURL(e.Request.AbsoluteURL(href))
		if abs == "" || abs == normalizeURL(t.ListURL) {
			return
		}
		if _, ok := dedup[abs]; ok {
			return
		}
		dedup[abs] = struct{}{}
		links = append(links, abs)
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(t.ListURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return links, nil
}

func (s *CareersImporter) scrapeDetailPage(ctx context.Context, t CareersTarget, jobURL string) (job.CatalogJob, error) {
	c := newCollector(jobURL)

	out := job.CatalogJob{
		ID:        StableJobID(t.SourceName, jobURL),
		ApplyLink: jobURL,
		Source:    t.SourceName,
		Tags:      []string{},
	}
	firstText := func(sel string, dst *string) {
		if strings.TrimSpace(sel) == "" {
			return
		}
		c.OnHTML(sel, func(e *colly.HTMLElement) {
			if *dst == "" {
				*dst = collapseSpace(e.Text)
			}
		})
	}
	firstText(t.TitleSelector, &out.Title)
	firstText(t.CompanySelector, &out.Company)
	firstText(t.LocationSelector, &out.Location)
	firstText(t.DateSelector, &out.DatePosted)

	if strings.TrimSpace(t.TagSelector) != "" {
		seen := map[string]struct{}{}
		c.OnHTML(t.TagSelector, func(e *colly.HTMLElement) {
			tag := strings.ToLower(collapseSpace(e.Text))
			if tag == "" {
				return
			}
			if _, ok := seen[tag]; ok {
				return
			}
			seen[tag] = struct{}{}
			out.Tags = append(out.Tags, tag)
		})
	}
	c.OnHTML(t.BodySelector, func(e *colly.HTMLElement) {
		if out.Description == "" {
			out.Description = collapseSpace(e.Text)
		}
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return job.CatalogJob{}, ctx.Err()
	}
	if err := c.Visit(jobURL); err != nil {
		return job.CatalogJob{}, err
	}
	c.Wait()
	if reqErr != nil {
		return job.CatalogJob{}, reqErr
	}

	out.Company = pickNonEmpty(out.Company, t.SourceName)
	return out, nil
}

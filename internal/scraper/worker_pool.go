package scraper

import (
	"context"
	"sync"
	"time"

	"swipehire/internal/domain/job"
)

// detailFunc fetches and parses a single posting page.
type detailFunc func(ctx context.Context, link string) (job.CatalogJob, error)

type detailResult struct {
	Link string
	Job  job.CatalogJob
	Err  error
}

// detailPool fetches posting pages on a fixed number of workers. When rps is
// positive, request starts are spaced by one throttle shared by all workers.
type detailPool struct {
	workers int
	rps     int
	fetch   detailFunc
}

func newDetailPool(workers, rps int, fetch detailFunc) detailPool {
	if workers <= 0 {
		workers = 1
	}
	return detailPool{workers: workers, rps: rps, fetch: fetch}
}

// fetchAll streams one result per link that was started. The channel closes
// once every link is done or ctx ends.
func (p detailPool) fetchAll(ctx context.Context, links []string) <-chan detailResult {
	out := make(chan detailResult, p.workers)
	if p.fetch == nil || len(links) == 0 {
		close(out)
		return out
	}

	queue := make(chan string)
	go func() {
		defer close(queue)
		for _, l := range links {
			select {
			case queue <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		ticker   *time.Ticker
		throttle <-chan time.Time
	)
	if p.rps > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(p.rps))
		throttle = ticker.C
	}

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for range p.workers {
		go func() {
			defer wg.Done()
			for link := range queue {
				if throttle != nil {
					select {
					case <-throttle:
					case <-ctx.Done():
						return
					}
				}
				if ctx.Err() != nil {
					return
				}
				j, err := p.fetch(ctx, link)
				select {
				case out <- detailResult{Link: link, Job: j, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		if ticker != nil {
			ticker.Stop()
		}
		close(out)
	}()
	return out
}

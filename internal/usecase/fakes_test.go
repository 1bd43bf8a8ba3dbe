package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/domain/user"
	"swipehire/internal/resume"

	"github.com/google/uuid"
)

type fakeJobRepo struct {
	byID    map[string]job.CatalogJob
	listErr error
	gets    int
}

func newFakeJobRepo(jobs ...job.CatalogJob) *fakeJobRepo {
	m := make(map[string]job.CatalogJob, len(jobs))
	for _, j := range jobs {
		m[j.ID] = j
	}
	return &fakeJobRepo{byID: m}
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (job.CatalogJob, error) {
	r.gets++
	j, ok := r.byID[id]
	if !ok {
		return job.CatalogJob{}, job.ErrNotFound
	}
	return j, nil
}

func (r *fakeJobRepo) GetByIDs(_ context.Context, ids []string) (map[string]job.CatalogJob, error) {
	out := make(map[string]job.CatalogJob, len(ids))
	for _, id := range ids {
		if j, ok := r.byID[id]; ok {
			out[id] = j
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListAll(context.Context) ([]job.CatalogJob, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]job.CatalogJob, 0, len(r.byID))
	for _, j := range r.byID {
		out = append(out, j)
	}
	return out, nil
}

func (r *fakeJobRepo) Upsert(_ context.Context, jobs []job.CatalogJob) (int, error) {
	for _, j := range jobs {
		r.byID[j.ID] = j
	}
	return len(jobs), nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]user.Profile
	cursors  []int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]user.Profile{}}
}

func (r *fakeProfileRepo) Get(_ context.Context, id uuid.UUID) (user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return user.Profile{}, user.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) SaveParsed(_ context.Context, id uuid.UUID, info, jobDict map[string]any, keys user.DynamicKeys) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profiles[id]
	p.UserID, p.InfoDict, p.JobDict, p.DynamicKeys, p.FeedCursor = id, info, jobDict, keys, 0
	r.profiles[id] = p
	return nil
}

func (r *fakeProfileRepo) SaveJobDict(_ context.Context, id uuid.UUID, jobDict map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profiles[id]
	p.UserID, p.JobDict, p.FeedCursor = id, jobDict, 0
	r.profiles[id] = p
	return nil
}

func (r *fakeProfileRepo) SaveRanking(_ context.Context, id uuid.UUID, ids []string, scores []float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return user.ErrProfileNotFound
	}
	p.RankedJobIDs, p.RankedScores = ids, scores
	r.profiles[id] = p
	return nil
}

func (r *fakeProfileRepo) SetCursor(_ context.Context, id uuid.UUID, cursor int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return user.ErrProfileNotFound
	}
	p.FeedCursor = cursor
	r.profiles[id] = p
	r.cursors = append(r.cursors, cursor)
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key string, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = []byte(value)
	return true, nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(context.Context, string, []byte) (string, error) {
	return e.text, e.err
}

type fakeParser struct {
	parsed resume.Parsed
	err    error
	got    string
}

func (p *fakeParser) Parse(_ context.Context, text string) (resume.Parsed, error) {
	p.got = text
	return p.parsed, p.err
}

var errBoom = errors.New("boom")

package localstore

import (
	"sync"

	"swipehire/internal/domain/job"

	"github.com/rs/zerolog"
)

// Matches is the set of accepted jobs, keyed by id, mirrored to the store on
// every change.
type Matches struct {
	mu        sync.Mutex
	store     *Store
	jobs      []job.Job
	malformed bool
	logger    zerolog.Logger
}

// OpenMatches loads the persisted set. Malformed data starts an empty set and
// is left on disk until the next write replaces it.
func OpenMatches(store *Store, logger zerolog.Logger) *Matches {
	m := &Matches{store: store, logger: logger.With().Str("component", "matches").Logger()}

	var saved []job.Job
	present, err := store.GetJSON(KeyMatches, &saved)
	switch {
	case err != nil:
		m.malformed = true
		m.logger.Warn().Err(err).Msg("failed to parse saved matches")
	case present:
		m.jobs = saved
	}
	return m
}

// Add records j unless a match with the same id exists.
func (m *Matches) Add(j job.Job) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(j.ID) >= 0 {
		return false, nil
	}
	next := append(cloneJobs(m.jobs), j)
	if err := m.store.SetJSON(KeyMatches, next); err != nil {
		return false, err
	}
	m.jobs = next
	m.malformed = false
	return true, nil
}

// Remove drops the match with id. While the sample matches are showing they
// are the list being edited, so removing one persists the other samples.
func (m *Matches) Remove(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.jobs
	if len(current) == 0 {
		current = MockMatches()
	}
	i := indexOf(current, id)
	if i < 0 {
		return false, nil
	}
	next := cloneJobs(current)
	next = append(next[:i], next[i+1:]...)
	if err := m.store.SetJSON(KeyMatches, next); err != nil {
		return false, err
	}
	m.jobs = next
	m.malformed = false
	return true, nil
}

// Clear empties the set and drops the persisted key.
func (m *Matches) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Remove(KeyMatches); err != nil {
		return err
	}
	m.jobs = nil
	m.malformed = false
	return nil
}

func (m *Matches) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexLocked(id) >= 0
}

func (m *Matches) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *Matches) List() []job.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneJobs(m.jobs)
}

// View is what the matches page shows: the saved set, or the built-in demo
// matches when nothing usable is saved.
func (m *Matches) View() ([]job.Job, bool) {
	list := m.List()
	if len(list) > 0 {
		return list, false
	}
	return MockMatches(), true
}

func (m *Matches) indexLocked(id string) int {
	return indexOf(m.jobs, id)
}

func indexOf(jobs []job.Job, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneJobs(in []job.Job) []job.Job {
	out := make([]job.Job, len(in))
	copy(out, in)
	return out
}

// MockMatches are shown when there is nothing saved.
func MockMatches() []job.Job {
	return []job.Job{
		{
			ID:                 "1",
			Title:              "Senior Frontend Engineer",
			Company:            "TechFlow",
			Tags:               []string{"React", "TypeScript", "Next.js", "Tailwind CSS", "Framer Motion"},
			Location:           "San Francisco, CA",
			DatePosted:         "2024-03-20",
			DescriptionSnippet: "Join our dynamic team building next-gen interfaces...",
		},
		{
			ID:                 "2",
			Title:              "Product Designer",
			Company:            "Creative Minds",
			Tags:               []string{"Figma", "UI/UX", "Prototyping", "Design Systems"},
			Location:           "New York, NY",
			DatePosted:         "2024-03-18",
			DescriptionSnippet: "Design beautiful and functional user experiences...",
		},
		{
			ID:                 "3",
			Title:              "Backend Developer",
			Company:            "DataScale",
			Tags:               []string{"Node.js", "PostgreSQL", "Redis", "Docker", "AWS"},
			Location:           "Austin, TX",
			DatePosted:         "2024-03-15",
			DescriptionSnippet: "Build scalable backend systems...",
		},
	}
}

package localstore

import (
	"fmt"
	"time"

	"swipehire/internal/domain/job"
)

type ApplicationStatus string

const (
	StatusAccepted ApplicationStatus = "accepted"
	StatusPending  ApplicationStatus = "pending"
	StatusRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Company   string            `json:"company"`
	Logo      string            `json:"logo,omitempty"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"appliedAt"`
	Location  string            `json:"location,omitempty"`
	Salary    string            `json:"salary,omitempty"`
}

// LoadApplications returns the saved applications, or sample ones when the key
// is missing or unreadable. A saved empty list stays empty.
func LoadApplications(store *Store, now time.Time) ([]Application, bool) {
	var apps []Application
	present, err := store.GetJSON(KeyApplications, &apps)
	if err == nil && present && apps != nil {
		return apps, false
	}
	return SampleApplications(now), true
}

func SampleApplications(now time.Time) []Application {
	day := 24 * time.Hour
	return []Application{
		{
			ID:        "a1",
			Title:     "Frontend Engineer",
			Company:   "BrightApps",
			Logo:      "/company-logos/brightapps.png",
			Status:    StatusPending,
			AppliedAt: now.Add(-3 * day).UTC(),
			Location:  "Remote",
			Salary:    "$90k - $120k",
		},
		{
			ID:        "a2",
			Title:     "Backend Engineer",
			Company:   "DataMill",
			Logo:      "/company-logos/datamill.png",
			Status:    StatusAccepted,
			AppliedAt: now.Add(-12 * day).UTC(),
			Location:  "New York, NY",
			Salary:    "$120k - $150k",
		},
		{
			ID:        "a3",
			Title:     "Product Designer",
			Company:   "FlowWorks",
			Logo:      "/company-logos/flowworks.png",
			Status:    StatusRejected,
			AppliedAt: now.Add(-30 * day).UTC(),
			Location:  "San Francisco, CA",
		},
	}
}

// Bio is stored as the raw text.
func (s *Store) Bio() string {
	v, _ := s.Get(KeyBio)
	return v
}

func (s *Store) SetBio(bio string) error {
	return s.Set(KeyBio, bio)
}

// SaveRankedJobs caches the last ranked batch for offline use.
func (s *Store) SaveRankedJobs(jobs []job.Job) error {
	if jobs == nil {
		jobs = []job.Job{}
	}
	return s.SetJSON(KeyRankedJobs, jobs)
}

// RankedJobs reports false when nothing is cached.
func (s *Store) RankedJobs() ([]job.Job, bool, error) {
	var jobs []job.Job
	present, err := s.GetJSON(KeyRankedJobs, &jobs)
	if err != nil {
		return nil, true, fmt.Errorf("ranked jobs cache: %w", err)
	}
	return jobs, present, nil
}

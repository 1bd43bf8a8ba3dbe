package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"swipehire/internal/domain/job"

	"github.com/rs/zerolog"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func reopen(t *testing.T, s *Store) *Store {
	t.Helper()
	s2, err := Open(s.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return s2
}

func TestStore_SetGetRemovePersist(t *testing.T) {
	s := openTemp(t)
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := reopen(t, s).Get("k"); !ok || v != "v" {
		t.Fatalf("expected persisted v, got %q %v", v, ok)
	}
	if err := s.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := reopen(t, s).Get("k"); ok {
		t.Fatalf("expected key gone after remove")
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := openTemp(t)
	if _, ok := s.Get(KeyMatches); ok {
		t.Fatalf("expected empty store")
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("open must not create the file")
	}
}

func TestMatches_AddDedupAndPersist(t *testing.T) {
	s := openTemp(t)
	m := OpenMatches(s, zerolog.Nop())

	added, err := m.Add(job.Job{ID: "j1", Title: "Go Developer"})
	if err != nil || !added {
		t.Fatalf("add: %v %v", added, err)
	}
	added, err = m.Add(job.Job{ID: "j1", Title: "Go Developer (again)"})
	if err != nil || added {
		t.Fatalf("duplicate add should be ignored: %v %v", added, err)
	}

	m2 := OpenMatches(reopen(t, s), zerolog.Nop())
	if m2.Len() != 1 || !m2.Contains("j1") {
		t.Fatalf("expected one persisted match, got %v", m2.List())
	}
}

func TestMatches_RemoveAndClear(t *testing.T) {
	s := openTemp(t)
	m := OpenMatches(s, zerolog.Nop())
	_, _ = m.Add(job.Job{ID: "a"})
	_, _ = m.Add(job.Job{ID: "b"})

	removed, err := m.Remove("a")
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}
	if got := OpenMatches(reopen(t, s), zerolog.Nop()).List(); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected [b] persisted, got %v", got)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := reopen(t, s).Get(KeyMatches); ok {
		t.Fatalf("clear must remove the persisted key")
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty set after clear")
	}
}

func TestMatches_InvalidJSONFallsBackToMocks(t *testing.T) {
	s := openTemp(t)
	if err := s.Set(KeyMatches, "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}

	m := OpenMatches(s, zerolog.Nop())
	view, mock := m.View()
	if !mock {
		t.Fatalf("expected mock fallback")
	}
	if len(view) != 3 {
		t.Fatalf("expected 3 mock matches, got %d", len(view))
	}
	if m.Len() != 0 {
		t.Fatalf("mock matches must not become real matches")
	}
}

func TestMatches_EmptySavedListShowsMocks(t *testing.T) {
	s := openTemp(t)
	_ = s.Set(KeyMatches, "[]")
	view, mock := OpenMatches(s, zerolog.Nop()).View()
	if !mock || len(view) != 3 {
		t.Fatalf("expected mocks for empty saved list")
	}
}

func TestMatches_RemoveFromSamplesPersistsTheRest(t *testing.T) {
	s := openTemp(t)
	m := OpenMatches(s, zerolog.Nop())

	removed, err := m.Remove("2")
	if err != nil || !removed {
		t.Fatalf("remove sample: %v %v", removed, err)
	}
	view, mock := m.View()
	if mock || len(view) != 2 || view[0].ID != "1" || view[1].ID != "3" {
		t.Fatalf("expected the other samples as saved matches, got %v mock=%v", view, mock)
	}

	m2 := OpenMatches(reopen(t, s), zerolog.Nop())
	if m2.Len() != 2 || m2.Contains("2") {
		t.Fatalf("expected [1 3] persisted, got %v", m2.List())
	}
	if removed, _ := m2.Remove("nope"); removed {
		t.Fatalf("unknown id must not be removed")
	}
}

func TestLoadApplications(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	s := openTemp(t)

	apps, sample := LoadApplications(s, now)
	if !sample || len(apps) != 3 {
		t.Fatalf("expected samples when missing")
	}
	if !apps[0].AppliedAt.Equal(now.Add(-72 * time.Hour)) {
		t.Fatalf("unexpected sample date %v", apps[0].AppliedAt)
	}

	_ = s.Set(KeyApplications, "oops")
	if _, sample := LoadApplications(s, now); !sample {
		t.Fatalf("expected samples when malformed")
	}

	_ = s.SetJSON(KeyApplications, []Application{{ID: "x", Title: "SRE", Status: StatusPending, AppliedAt: now}})
	apps, sample = LoadApplications(s, now)
	if sample || len(apps) != 1 || apps[0].ID != "x" {
		t.Fatalf("expected saved application, got %v", apps)
	}

	_ = s.Set(KeyApplications, "[]")
	apps, sample = LoadApplications(s, now)
	if sample || len(apps) != 0 {
		t.Fatalf("saved empty list must stay empty")
	}
}

func TestBioAndRankedJobs(t *testing.T) {
	s := openTemp(t)
	if err := s.SetBio("Backend engineer, Go."); err != nil {
		t.Fatalf("set bio: %v", err)
	}
	if got := reopen(t, s).Bio(); got != "Backend engineer, Go." {
		t.Fatalf("unexpected bio %q", got)
	}

	if _, ok, _ := s.RankedJobs(); ok {
		t.Fatalf("expected no cached ranked jobs")
	}
	if err := s.SaveRankedJobs([]job.Job{{ID: "r1", Score: 0.9}}); err != nil {
		t.Fatalf("save ranked: %v", err)
	}
	jobs, ok, err := reopen(t, s).RankedJobs()
	if err != nil || !ok || len(jobs) != 1 || jobs[0].Score != 0.9 {
		t.Fatalf("unexpected ranked jobs %v %v %v", jobs, ok, err)
	}
}

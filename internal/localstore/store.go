// Package localstore keeps the client's local state in one JSON file: a flat
// map of string keys to string values, rewritten in full on every change.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	KeyApplications = "applications"
	KeyMatches      = "swipehire-matches"
	KeyRankedJobs   = "ranked-jobs"
	KeyBio          = "profile_bio"
)

// Store is a single-writer key/value file. Last writer wins.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open reads path if it exists. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read local store %s: %w", path, err)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("decode local store %s: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.flushLocked(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// SetJSON stores v serialized.
func (s *Store) SetJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(b))
}

// GetJSON decodes the value under key into out. It reports false when the key
// is absent; a present but malformed value is an error.
func (s *Store) GetJSON(key string, out any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) flushLocked() error {
	b, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".swipehire-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write local store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close local store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace local store: %w", err)
	}
	return nil
}

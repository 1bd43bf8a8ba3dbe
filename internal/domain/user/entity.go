package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DynamicKeys lists the keys the resume parser added beyond the fixed schema.
type DynamicKeys struct {
	InfoDict []string `json:"info_dict"`
	JobDict  []string `json:"job_dict"`
}

// Profile is what a parsed resume leaves behind for a user, plus the feed
// position. RankedJobIDs and RankedScores are parallel.
type Profile struct {
	UserID           uuid.UUID      `json:"uid"`
	InfoDict         map[string]any `json:"info_dict"`
	JobDict          map[string]any `json:"job_dict"`
	DynamicKeys      DynamicKeys    `json:"dynamic_keys"`
	FeedCursor       int            `json:"count"`
	RankedJobIDs     []string       `json:"ranked_job_ids"`
	RankedScores     []float64      `json:"-"`
	RankingUpdatedAt *time.Time     `json:"ranking_updated_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ScoreAt returns the stored score for the i-th ranked id.
func (p Profile) ScoreAt(i int) float64 {
	if i < 0 || i >= len(p.RankedScores) {
		return 0
	}
	return p.RankedScores[i]
}

package job

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("job not found")

// Job is the ranked job as it travels over the wire to clients.
type Job struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Company            string   `json:"company"`
	Tags               []string `json:"tags"`
	Location           string   `json:"location"`
	DatePosted         string   `json:"date_posted"`
	ApplyLink          string   `json:"apply_link"`
	DescriptionSnippet string   `json:"description_snippet"`
	Score              float64  `json:"score"`
}

// MatchPercent is the score rendered as a whole percentage.
func (j Job) MatchPercent() int {
	p := j.Score * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p + 0.5)
}

// CatalogJob is a stored job posting before it is scored for a user.
type CatalogJob struct {
	ID          string
	Title       string
	Company     string
	Tags        []string
	Location    string
	DatePosted  string
	ApplyLink   string
	Description string
	Source      string
	CreatedAt   time.Time
}

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	switch d {
	case DirectionLeft, DirectionRight:
		return d, nil
	}
	return "", fmt.Errorf("unknown swipe direction %q", s)
}

// SnippetLength is how much of the description a ranked job carries, in runes.
const SnippetLength = 300

// Snippet cuts a description down to SnippetLength runes.
func Snippet(description string) string {
	r := []rune(description)
	if len(r) <= SnippetLength {
		return description
	}
	return string(r[:SnippetLength])
}

// Ranked converts a catalog job into the wire form with the given score.
func (c CatalogJob) Ranked(score float64) Job {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return Job{
		ID:                 c.ID,
		Title:              c.Title,
		Company:            c.Company,
		Tags:               tags,
		Location:           c.Location,
		DatePosted:         c.DatePosted,
		ApplyLink:          c.ApplyLink,
		DescriptionSnippet: Snippet(c.Description),
		Score:              score,
	}
}

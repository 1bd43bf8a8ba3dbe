package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"swipehire/internal/domain/user"
)

var ErrInvalidOutput = errors.New("resume parser returned invalid JSON")

// Parsed is the parser contract: contact details in InfoDict, everything job
// relevant in JobDict, and the keys outside the fixed schema.
type Parsed struct {
	InfoDict       map[string]any   `json:"info_dict"`
	JobDict        map[string]any   `json:"job_dict"`
	NewKeysTracker user.DynamicKeys `json:"new_keys_tracker"`
}

type Parser interface {
	Parse(ctx context.Context, text string) (Parsed, error)
}

// DecodeParsed accepts raw model or script output, tolerating a fenced code block.
func DecodeParsed(raw []byte) (Parsed, error) {
	raw = bytes.TrimSpace(stripFence(raw))
	if len(raw) == 0 {
		return Parsed{}, ErrInvalidOutput
	}
	var p Parsed
	if err := json.Unmarshal(raw, &p); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return p.normalized(), nil
}

func (p Parsed) normalized() Parsed {
	if p.InfoDict == nil {
		p.InfoDict = map[string]any{}
	}
	if p.JobDict == nil {
		p.JobDict = map[string]any{}
	}
	if p.NewKeysTracker.InfoDict == nil {
		p.NewKeysTracker.InfoDict = []string{}
	}
	if p.NewKeysTracker.JobDict == nil {
		p.NewKeysTracker.JobDict = []string{}
	}
	return p
}

// Name and Email look in the info dict under the keys parsers commonly use.
func (p Parsed) Name() string {
	return firstString(p.InfoDict, "full_name", "name")
}

func (p Parsed) Email() string {
	return firstString(p.InfoDict, "email", "mail")
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func stripFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}

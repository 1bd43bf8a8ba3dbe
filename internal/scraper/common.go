package scraper

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// StableJobID derives a catalog id from the posting URL so re-imports update
// rather than duplicate.
func StableJobID(source, jobURL string) string {
	h := sha1.Sum([]byte(normalizeURL(jobURL)))
	prefix := strings.ToLower(strings.TrimSpace(source))
	prefix = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, prefix)
	prefix = strings.Trim(prefix, "-")
	if prefix == "" {
		prefix = "job"
	}
	return prefix + "-" + hex.EncodeToString(h[:8])
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "SwipeHireImporter/0.1",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func hostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// normalizeURL drops the fragment and trailing slash.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

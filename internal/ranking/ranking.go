// Package ranking orders catalog jobs by their similarity to a profile's job
// dict. Similarity is the cosine of TF-IDF vectors over lower-cased word
// tokens, so scores stay in [0,1].
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"swipehire/internal/domain/job"
)

// DefaultTopK caps how many jobs a ranking keeps.
const DefaultTopK = 3000

type Vector map[string]float64

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {}, "for": {},
	"from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"we": {}, "with": {}, "you": {}, "your": {}, "our": {}, "will": {}, "this": {}, "that": {},
}

// Tokenize splits on anything that is not a letter, digit, '+' or '#', so
// "C++" and "C#" survive.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	out := fields[:0]
	for _, f := range fields {
		if strings.Trim(f, "+#") == "" {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ProfileText flattens a job dict into text, visiting keys in sorted order.
// Only values contribute.
func ProfileText(jobDict map[string]any) string {
	var b strings.Builder
	flatten(&b, jobDict)
	return strings.TrimSpace(b.String())
}

func flatten(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		b.WriteString(t)
		b.WriteByte(' ')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(b, t[k])
		}
	case []any:
		for _, e := range t {
			flatten(b, e)
		}
	case []string:
		for _, e := range t {
			flatten(b, e)
		}
	case bool:
	default:
		fmt.Fprintf(b, "%v ", t)
	}
}

// JobText is the text a catalog job is matched on.
func JobText(j job.CatalogJob) string {
	parts := []string{j.Title, j.Company, strings.Join(j.Tags, " "), j.Description}
	return strings.Join(parts, " ")
}

func termFreq(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// Cosine of two non-negative vectors, clamped to [0,1].
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (na * nb)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

func norm(v Vector) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// Rank scores every catalog job against the job dict and returns at most topK
// of them, best first. Ties keep catalog order. topK <= 0 means DefaultTopK.
func Rank(jobDict map[string]any, catalog []job.CatalogJob, topK int) []job.Job {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(catalog) == 0 {
		return []job.Job{}
	}

	docs := make([]map[string]float64, len(catalog))
	df := map[string]int{}
	for i, c := range catalog {
		docs[i] = termFreq(Tokenize(JobText(c)))
		for t := range docs[i] {
			df[t]++
		}
	}

	n := float64(len(catalog))
	idf := func(t string) float64 {
		return math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	weigh := func(tf map[string]float64) Vector {
		v := make(Vector, len(tf))
		for t, f := range tf {
			v[t] = f * idf(t)
		}
		return v
	}

	query := weigh(termFreq(Tokenize(ProfileText(jobDict))))

	out := make([]job.Job, len(catalog))
	for i, c := range catalog {
		out[i] = c.Ranked(Cosine(query, weigh(docs[i])))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// IDsAndScores splits a ranking into the parallel slices a profile stores.
func IDsAndScores(ranked []job.Job) ([]string, []float64) {
	ids := make([]string, len(ranked))
	scores := make([]float64, len(ranked))
	for i, j := range ranked {
		ids[i] = j.ID
		scores[i] = j.Score
	}
	return ids, scores
}

package ranking

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"swipehire/internal/domain/job"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Senior C++ / C# engineer, and Go + Kubernetes!")
	want := []string{"senior", "c++", "c#", "engineer", "go", "kubernetes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestProfileText_SortedKeysValuesOnly(t *testing.T) {
	text := ProfileText(map[string]any{
		"skills":     []any{"go", "postgres"},
		"experience": 3.0,
		"roles":      map[string]any{"b": "sre", "a": "backend"},
		"remote":     true,
	})
	if text != "3 backend sre go postgres" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestCosine(t *testing.T) {
	a := Vector{"go": 1, "sql": 1}
	if got := Cosine(a, a); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self cosine = %v", got)
	}
	if got := Cosine(a, Vector{"java": 1}); got != 0 {
		t.Fatalf("disjoint cosine = %v", got)
	}
	if got := Cosine(a, nil); got != 0 {
		t.Fatalf("empty cosine = %v", got)
	}
}

func TestRank_OrderBoundsAndSnippet(t *testing.T) {
	long := strings.Repeat("é", 400)
	catalog := []job.CatalogJob{
		{ID: "java", Title: "Java Developer", Description: "Spring and Hibernate"},
		{ID: "go", Title: "Go Backend Engineer", Tags: []string{"go", "postgres"}, Description: long},
		{ID: "none", Title: "Pastry Chef", Description: "croissants"},
		{ID: "go2", Title: "Platform Engineer", Description: "We write Go services on Kubernetes"},
	}
	ranked := Rank(map[string]any{"skills": []any{"go", "postgres", "kubernetes"}}, catalog, 0)

	if len(ranked) != 4 {
		t.Fatalf("expected 4 ranked jobs, got %d", len(ranked))
	}
	if ranked[0].ID != "go" {
		t.Fatalf("expected go first, got %s", ranked[0].ID)
	}
	for i, j := range ranked {
		if j.Score < 0 || j.Score > 1 {
			t.Fatalf("score out of range: %v", j.Score)
		}
		if i > 0 && ranked[i-1].Score < j.Score {
			t.Fatalf("not sorted descending at %d", i)
		}
		if j.Tags == nil {
			t.Fatalf("tags must not be nil")
		}
	}
	if n := len([]rune(ranked[0].DescriptionSnippet)); n != job.SnippetLength {
		t.Fatalf("expected %d rune snippet, got %d", job.SnippetLength, n)
	}
}

func TestRank_TopKAndTies(t *testing.T) {
	catalog := []job.CatalogJob{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	ranked := Rank(map[string]any{"skills": "go"}, catalog, 2)
	if len(ranked) != 2 || ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Fatalf("ties must keep catalog order and respect topK, got %+v", ranked)
	}

	if got := Rank(nil, nil, 10); got == nil || len(got) != 0 {
		t.Fatalf("empty catalog must give empty non-nil ranking")
	}
}

func TestIDsAndScores(t *testing.T) {
	ids, scores := IDsAndScores([]job.Job{{ID: "x", Score: 0.5}, {ID: "y", Score: 0.25}})
	if !reflect.DeepEqual(ids, []string{"x", "y"}) || !reflect.DeepEqual(scores, []float64{0.5, 0.25}) {
		t.Fatalf("unexpected split %v %v", ids, scores)
	}
}

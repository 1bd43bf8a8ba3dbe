package feed

import (
	"testing"

	"swipehire/internal/domain/job"
)

func TestQueue_HeadAndRemove(t *testing.T) {
	q := NewQueue(j("a"), j("b"), j("a"))

	h, ok := q.Head()
	if !ok || h.ID != "a" {
		t.Fatalf("expected head a, got %v", h)
	}
	if !q.Remove("a") {
		t.Fatalf("expected remove to succeed")
	}
	got := q.Snapshot()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected only first a removed, got %v", got)
	}
	if q.Remove("missing") {
		t.Fatalf("remove of unknown id should report false")
	}
}

func TestQueue_PushFrontAndRemoveHead(t *testing.T) {
	q := NewQueue(j("b"))
	q.PushFront(j("a"))
	h, _ := q.RemoveHead()
	if h.ID != "a" {
		t.Fatalf("expected a, got %s", h.ID)
	}
	h, _ = q.RemoveHead()
	if h.ID != "b" {
		t.Fatalf("expected b, got %s", h.ID)
	}
	if _, ok := q.RemoveHead(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestQueue_SnapshotIsCopy(t *testing.T) {
	q := NewQueue(j("a"))
	snap := q.Snapshot()
	snap[0].ID = "changed"
	if h, _ := q.Head(); h.ID != "a" {
		t.Fatalf("snapshot must not alias queue storage")
	}
}

func TestQueue_FilterByLocation(t *testing.T) {
	q := NewQueue(
		job.Job{ID: "1", Location: "San Francisco, CA"},
		job.Job{ID: "2", Location: "Remote"},
		job.Job{ID: "3", Location: "south san francisco"},
	)
	got := q.Filter(Filter{Location: "  San Francisco "})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("unexpected filter result %v", got)
	}
	if len(q.Filter(Filter{})) != 3 {
		t.Fatalf("zero filter should keep everything")
	}
}

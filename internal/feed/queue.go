// Package feed holds the client-side job feed: the queue of undecided jobs,
// the swipe reducer acting on its head, and the feed lifecycle.
package feed

import (
	"strings"

	"swipehire/internal/domain/job"
)

// Queue is the ordered list of jobs not yet decided. Index 0 is the head.
// Ids are expected to be unique but that is not enforced.
type Queue struct {
	jobs []job.Job
}

func NewQueue(jobs ...job.Job) *Queue {
	q := &Queue{}
	q.Append(jobs...)
	return q
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.jobs)
}

func (q *Queue) Head() (job.Job, bool) {
	if q.Len() == 0 {
		return job.Job{}, false
	}
	return q.jobs[0], true
}

func (q *Queue) Append(jobs ...job.Job) {
	q.jobs = append(q.jobs, jobs...)
}

func (q *Queue) PushFront(j job.Job) {
	q.jobs = append([]job.Job{j}, q.jobs...)
}

func (q *Queue) RemoveHead() (job.Job, bool) {
	h, ok := q.Head()
	if !ok {
		return job.Job{}, false
	}
	q.jobs = q.jobs[1:]
	return h, true
}

// Remove drops the first job with the given id.
func (q *Queue) Remove(id string) bool {
	for i := range q.jobs {
		if q.jobs[i].ID != id {
			continue
		}
		q.jobs = append(q.jobs[:i:i], q.jobs[i+1:]...)
		return true
	}
	return false
}

func (q *Queue) Snapshot() []job.Job {
	out := make([]job.Job, q.Len())
	copy(out, q.jobs)
	return out
}

// Filter narrows what the user sees without touching the queue itself.
type Filter struct {
	Location string
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Location) == ""
}

func (f Filter) Match(j job.Job) bool {
	loc := strings.ToLower(strings.TrimSpace(f.Location))
	if loc == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Location), loc)
}

// Filter returns the visible jobs in queue order.
func (q *Queue) Filter(f Filter) []job.Job {
	if f.IsZero() {
		return q.Snapshot()
	}
	out := make([]job.Job, 0, q.Len())
	for _, j := range q.jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

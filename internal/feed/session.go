package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"swipehire/internal/domain/job"

	"github.com/rs/zerolog"
)

// DefaultRemovalDelay is how long a decided job stays on screen before it
// leaves the queue. Every decision path uses it.
const DefaultRemovalDelay = 300 * time.Millisecond

var (
	ErrNoCurrentJob  = errors.New("no current job")
	ErrSwipeInFlight = errors.New("a swipe is already in flight")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNoSelection   = errors.New("no job selected")
	ErrFeedEnded     = errors.New("feed ended")
)

// Replenisher asks the backend for one more job. It reports false when the
// request was suppressed or could not be sent.
type Replenisher interface {
	RequestNext() bool
}

// MatchStore records right swipes.
type MatchStore interface {
	Add(j job.Job) (bool, error)
	Remove(id string) (bool, error)
}

type SwipeRecord struct {
	Job       job.Job       `json:"job"`
	Direction job.Direction `json:"direction"`
}

type Option func(*Session)

func WithRemovalDelay(d time.Duration) Option {
	return func(s *Session) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l.With().Str("component", "feed").Logger() }
}

func WithReplenisher(r Replenisher) Option {
	return func(s *Session) { s.replenish = r }
}

// Session is the swipe reducer together with the queue it reduces.
type Session struct {
	mu sync.Mutex

	queue   *Queue
	history []SwipeRecord
	filter  Filter
	state   State

	matches   MatchStore
	replenish Replenisher

	selected *job.Job
	inFlight bool
	ended    bool
	detached bool

	delay  time.Duration
	logger zerolog.Logger
}

func NewSession(matches MatchStore, opts ...Option) *Session {
	s := &Session{
		queue:   NewQueue(),
		state:   StateLoading,
		matches: matches,
		delay:   DefaultRemovalDelay,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReplenisher attaches the transport once the duplex connection is open.
func (s *Session) SetReplenisher(r Replenisher) {
	s.mu.Lock()
	s.replenish = r
	s.detached = false
	s.mu.Unlock()
}

// Load installs the initial batch.
func (s *Session) Load(jobs []job.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Append(jobs...)
	s.settleLocked()
	s.logger.Debug().Int("jobs", len(jobs)).Str("state", string(s.state)).Msg("initial batch loaded")
}

// Receive appends a job delivered by the transport.
func (s *Session) Receive(j job.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Append(j)
	s.settleLocked()
}

// End records that the backend has no more jobs.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ended = true
	s.settleLocked()
}

// Detach records that the transport is gone. Nothing more will arrive.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detached = true
	s.settleLocked()
}

// Reset empties the session for a fresh feed after a new resume upload.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = NewQueue()
	s.history = nil
	s.selected = nil
	s.inFlight = false
	s.ended = false
	s.detached = false
	s.replenish = nil
	s.setStateLocked(StateLoading)
}

func (s *Session) SetFilter(f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current is the head of the visible queue.
func (s *Session) Current() (job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Remaining counts the visible jobs.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue.Filter(s.filter))
}

func (s *Session) Queue() []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}

func (s *Session) History() []SwipeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SwipeRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Swipe decides on the current job.
func (s *Session) Swipe(ctx context.Context, dir job.Direction) (job.Job, error) {
	return s.decide(ctx, dir, false)
}

// ViewDetails selects the current job for the details view.
func (s *Session) ViewDetails() (job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.currentLocked()
	if !ok {
		return job.Job{}, ErrNoCurrentJob
	}
	s.selected = &cur
	return cur, nil
}

func (s *Session) Selected() (job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return job.Job{}, false
	}
	return *s.selected, true
}

func (s *Session) CloseDetails() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Apply accepts the job open in the details view.
func (s *Session) Apply(ctx context.Context) (job.Job, error) {
	return s.decideSelected(ctx, job.DirectionRight)
}

// Pass dismisses the job open in the details view.
func (s *Session) Pass(ctx context.Context) (job.Job, error) {
	return s.decideSelected(ctx, job.DirectionLeft)
}

func (s *Session) decideSelected(ctx context.Context, dir job.Direction) (job.Job, error) {
	return s.decide(ctx, dir, true)
}

// Undo puts the last decided job back at the head. The backend cursor is not
// rewound.
func (s *Session) Undo() (SwipeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return SwipeRecord{}, ErrSwipeInFlight
	}
	if s.state == StateEmpty {
		return SwipeRecord{}, ErrFeedEnded
	}
	if len(s.history) == 0 {
		return SwipeRecord{}, ErrNothingToUndo
	}

	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.queue.PushFront(last.Job)

	if last.Direction == job.DirectionRight && s.matches != nil {
		if _, err := s.matches.Remove(last.Job.ID); err != nil {
			s.logger.Warn().Err(err).Str("job_id", last.Job.ID).Msg("undo: remove match failed")
		}
	}

	s.settleLocked()
	return last, nil
}

// decide removes the visible head after the removal delay. From the details
// view the selection must still be that head; a job decided any other way
// drops out of the selection. A cancelled swipe writes no match.
func (s *Session) decide(ctx context.Context, dir job.Direction, fromDetails bool) (job.Job, error) {
	s.mu.Lock()
	if fromDetails && s.selected == nil {
		s.mu.Unlock()
		return job.Job{}, ErrNoSelection
	}
	cur, ok := s.currentLocked()
	if fromDetails && (!ok || s.selected.ID != cur.ID) {
		s.selected = nil
		s.mu.Unlock()
		return job.Job{}, ErrNoSelection
	}
	if !ok {
		s.mu.Unlock()
		return job.Job{}, ErrNoCurrentJob
	}
	if _, err := job.ParseDirection(string(dir)); err != nil {
		s.mu.Unlock()
		return job.Job{}, err
	}
	if s.inFlight {
		s.mu.Unlock()
		return job.Job{}, ErrSwipeInFlight
	}
	s.inFlight = true
	matches := s.matches
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
		return job.Job{}, err
	}

	if dir == job.DirectionRight && matches != nil {
		if _, err := matches.Add(cur); err != nil {
			s.logger.Warn().Err(err).Str("job_id", cur.ID).Msg("persist match failed")
		}
	}

	s.mu.Lock()
	s.queue.Remove(cur.ID)
	s.history = append(s.history, SwipeRecord{Job: cur, Direction: dir})
	if s.selected != nil && s.selected.ID == cur.ID {
		s.selected = nil
	}
	s.inFlight = false
	r := s.replenish
	s.settleLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("job_id", cur.ID).Str("direction", string(dir)).Msg("swiped")

	if r != nil && !r.RequestNext() {
		s.logger.Debug().Msg("replenish suppressed")
	}
	return cur, nil
}

func (s *Session) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) currentLocked() (job.Job, bool) {
	if s.filter.IsZero() {
		return s.queue.Head()
	}
	visible := s.queue.Filter(s.filter)
	if len(visible) == 0 {
		return job.Job{}, false
	}
	return visible[0], true
}

// settleLocked derives the lifecycle state from the queue and transport.
func (s *Session) settleLocked() {
	switch {
	case s.queue.Len() > 0:
		s.setStateLocked(StateActive)
	case s.ended || s.detached || s.replenish == nil:
		// Nothing more can arrive.
		s.setStateLocked(StateEmpty)
	default:
		s.setStateLocked(StateLoading)
	}
}

func (s *Session) setStateLocked(to State) {
	from := s.state
	if from == to {
		return
	}
	if !IsTransitionAllowed(from, to) {
		s.logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state transition ignored")
		return
	}
	s.state = to
}

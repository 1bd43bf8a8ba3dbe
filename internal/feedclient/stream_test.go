package feedclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type recordingSink struct {
	mu       sync.Mutex
	received []job.Job
	ended    int

	events   chan string
	detached chan struct{}
	once     sync.Once
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan string, 16), detached: make(chan struct{})}
}

func (s *recordingSink) Receive(j job.Job) {
	s.mu.Lock()
	s.received = append(s.received, j)
	s.mu.Unlock()
	s.events <- "job:" + j.ID
}

func (s *recordingSink) End() {
	s.mu.Lock()
	s.ended++
	s.mu.Unlock()
	s.events <- "end"
}

func (s *recordingSink) CatalogUpdated(source string, count int) {
	s.events <- fmt.Sprintf("catalog:%s:%d", source, count)
}

func (s *recordingSink) Detach() { s.once.Do(func() { close(s.detached) }) }

func (s *recordingSink) next(t *testing.T) string {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for stream event")
		return ""
	}
}

// fakeFeed answers each NEXT_JOB with the next job, then END. Replies wait on
// release when it is set.
type fakeFeed struct {
	jobs    []job.Job
	release chan struct{}
	token   string

	mu       sync.Mutex
	requests int
	conn     *websocket.Conn
}

func (f *fakeFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != protocol.PathJobs || r.URL.Query().Get("token") != f.token {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	defer conn.Close()

	sent := 0
	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != protocol.TypeNextJob {
			continue
		}
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		if f.release != nil {
			<-f.release
		}
		reply := protocol.End()
		if sent < len(f.jobs) {
			reply = protocol.JobMessage(f.jobs[sent])
			sent++
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (f *fakeFeed) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeFeed) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		_ = f.conn.Close()
	}
}

func TestDial_RequiresToken(t *testing.T) {
	_, err := Dial(context.Background(), "http://127.0.0.1:1", "", newRecordingSink(), zerolog.Nop())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestStream_OneRequestAtATime(t *testing.T) {
	feed := &fakeFeed{token: "tok", jobs: []job.Job{{ID: "j9"}}, release: make(chan struct{})}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	sink := newRecordingSink()
	st, err := Dial(context.Background(), srv.URL, "tok", sink, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer st.Close()

	if !st.RequestNext() {
		t.Fatalf("first request should be sent")
	}
	if st.RequestNext() {
		t.Fatalf("second request must be suppressed while one is in flight")
	}
	if !st.InFlight() {
		t.Fatalf("expected in-flight flag set")
	}

	feed.release <- struct{}{}
	if ev := sink.next(t); ev != "job:j9" {
		t.Fatalf("unexpected event %q", ev)
	}
	if st.InFlight() {
		t.Fatalf("JOB must clear the in-flight flag")
	}

	if !st.RequestNext() {
		t.Fatalf("request after JOB should be sent")
	}
	feed.release <- struct{}{}
	if ev := sink.next(t); ev != "end" {
		t.Fatalf("expected END, got %q", ev)
	}
	if st.InFlight() {
		t.Fatalf("END must clear the in-flight flag")
	}
	if got := feed.requestCount(); got != 2 {
		t.Fatalf("expected 2 requests on the wire, got %d", got)
	}
}

func TestStream_DropDetachesSilently(t *testing.T) {
	feed := &fakeFeed{token: "tok", release: make(chan struct{})}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	sink := newRecordingSink()
	st, err := Dial(context.Background(), srv.URL, "tok", sink, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if !st.RequestNext() {
		t.Fatalf("request should be sent")
	}
	// Wait until the server has the request, then kill the connection.
	deadline := time.Now().Add(2 * time.Second)
	for feed.requestCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	feed.drop()

	select {
	case <-sink.detached:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Detach after drop")
	}
	<-st.Done()

	if st.InFlight() {
		t.Fatalf("drop must clear the in-flight flag")
	}
	if st.RequestNext() {
		t.Fatalf("no request may be sent on a dropped stream")
	}
	close(feed.release)
	_ = st.Close()
}

func TestDial_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(&fakeFeed{token: "good"})
	defer srv.Close()

	if _, err := Dial(context.Background(), srv.URL, "bad", newRecordingSink(), zerolog.Nop()); err == nil {
		t.Fatalf("expected handshake failure")
	}
}

func TestStream_CatalogUpdatedReachesSink(t *testing.T) {
	feed := &fakeFeed{token: "tok"}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	sink := newRecordingSink()
	st, err := Dial(context.Background(), srv.URL, "tok", sink, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer st.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		feed.mu.Lock()
		conn := feed.conn
		feed.mu.Unlock()
		if conn != nil {
			if err := conn.WriteJSON(protocol.CatalogUpdated("acme", 4)); err != nil {
				t.Fatalf("push: %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never saw the connection")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if ev := sink.next(t); ev != "catalog:acme:4" {
		t.Fatalf("expected catalog notice, got %q", ev)
	}
	if st.InFlight() {
		t.Fatalf("a push must not touch the request flag")
	}
}

package ws

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/pkg/jwt"
	"swipehire/internal/protocol"
	"swipehire/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type fakeFeed struct {
	jobs    []job.Job
	openErr error
}

func (f *fakeFeed) Open(_ context.Context, userID uuid.UUID) (*usecase.FeedCursor, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &usecase.FeedCursor{UserID: userID}, nil
}

func (f *fakeFeed) Next(_ context.Context, fc *usecase.FeedCursor) (job.Job, bool, error) {
	if fc.Position >= len(f.jobs) {
		return job.Job{}, false, nil
	}
	j := f.jobs[fc.Position]
	fc.Position++
	return j, true, nil
}

func newTestServer(t *testing.T, feed usecase.FeedUsecase) (*httptest.Server, *jwt.HMACService, *Hub) {
	t.Helper()
	jwtSvc := jwt.NewHMACService("a", "r", time.Minute, time.Hour)
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	srv := httptest.NewServer(NewHandler(hub, feed, jwtSvc, zerolog.Nop()))
	t.Cleanup(func() {
		hub.Shutdown(time.Second)
		srv.Close()
	})
	return srv, jwtSvc, hub
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + protocol.PathJobs
	if token != "" {
		u += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func request(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	if err := conn.WriteJSON(protocol.NextJob()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg protocol.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHandler_RejectsMissingOrBadToken(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeFeed{})

	for _, tok := range []string{"", "garbage"} {
		conn := dial(t, srv, tok)
		_, _, err := conn.ReadMessage()
		var ce *websocket.CloseError
		if !errors.As(err, &ce) || ce.Code != websocket.ClosePolicyViolation {
			t.Fatalf("token %q: expected 1008 close, got %v", tok, err)
		}
	}
}

func TestHandler_ServesJobsThenEnd(t *testing.T) {
	feed := &fakeFeed{jobs: []job.Job{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}
	srv, jwtSvc, _ := newTestServer(t, feed)
	tok, _ := jwtSvc.GenerateAccessToken(uuid.New(), "u@example.com")
	conn := dial(t, srv, tok)

	for _, want := range []string{"a", "b"} {
		msg := request(t, conn)
		if msg.Type != protocol.TypeJob || msg.Job == nil || msg.Job.ID != want {
			t.Fatalf("expected JOB %s, got %+v", want, msg)
		}
	}
	if msg := request(t, conn); msg.Type != protocol.TypeEnd {
		t.Fatalf("expected END, got %+v", msg)
	}
	if msg := request(t, conn); msg.Type != protocol.TypeEnd {
		t.Fatalf("expected END again, got %+v", msg)
	}
}

func TestHandler_IgnoresUnknownTypes(t *testing.T) {
	feed := &fakeFeed{jobs: []job.Job{{ID: "a"}}}
	srv, jwtSvc, _ := newTestServer(t, feed)
	tok, _ := jwtSvc.GenerateAccessToken(uuid.New(), "")
	conn := dial(t, srv, tok)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"PING_ME"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := request(t, conn); msg.Type != protocol.TypeJob || msg.Job.ID != "a" {
		t.Fatalf("expected the first reply to answer NEXT_JOB, got %+v", msg)
	}
}

func TestHandler_NoProfileAnswersEnd(t *testing.T) {
	srv, jwtSvc, _ := newTestServer(t, &fakeFeed{openErr: usecase.ErrProfileNotFound})
	tok, _ := jwtSvc.GenerateAccessToken(uuid.New(), "")
	conn := dial(t, srv, tok)

	if msg := request(t, conn); msg.Type != protocol.TypeEnd {
		t.Fatalf("expected END, got %+v", msg)
	}
}

func TestHub_BroadcastAndShutdown(t *testing.T) {
	srv, jwtSvc, hub := newTestServer(t, &fakeFeed{})
	userID := uuid.New()
	tok, _ := jwtSvc.GenerateAccessToken(userID, "")
	conn := dial(t, srv, tok)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if hub.UserFeeds(userID) != 1 || hub.UserFeeds(uuid.New()) != 0 {
		t.Fatalf("feeds not indexed by user")
	}

	SetDefaultHub(hub)
	t.Cleanup(func() { SetDefaultHub(nil) })
	NotifyCatalogUpdated("acme", 3)

	var msg protocol.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != protocol.TypeCatalogUpdated || msg.Source != "acme" || msg.Count != 3 {
		t.Fatalf("unexpected push %+v", msg)
	}

	hub.Shutdown(time.Second)
	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.CloseGoingAway {
		t.Fatalf("expected 1001 close, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after shutdown")
	}
}

func TestHub_LeaveRightAfterJoinIsNotLost(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	clients := make([]*Client, 50)
	for i := range clients {
		c := &Client{userID: userID, send: make(chan []byte, 1)}
		clients[i] = c
		hub.Register(c)
		hub.Unregister(c)
	}

	go hub.Run()
	last := &Client{userID: uuid.New(), send: make(chan []byte, 1)}
	hub.Register(last)
	deadline := time.Now().Add(2 * time.Second)
	for hub.UserFeeds(last.userID) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("hub never caught up")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if hub.ClientCount() != 1 || hub.UserFeeds(userID) != 0 {
		t.Fatalf("left clients still indexed: total=%d user=%d", hub.ClientCount(), hub.UserFeeds(userID))
	}
	for i, c := range clients {
		if _, open := <-c.send; open {
			t.Fatalf("client %d send queue still open", i)
		}
	}

	hub.Unregister(last)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("last client never left")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Shutdown(time.Second)
}

package feedclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Sink receives what the stream reads.
type Sink interface {
	Receive(j job.Job)
	End()
	Detach()
}

// CatalogNotifier is implemented by sinks that want to hear about catalog
// imports on the server. Other sinks never see those messages.
type CatalogNotifier interface {
	CatalogUpdated(source string, count int)
}

// Stream is the duplex feed connection. A request is in flight from the moment
// NEXT_JOB is written until a JOB or END is read; RequestNext does nothing
// while one is in flight.
type Stream struct {
	conn   *websocket.Conn
	sink   Sink
	logger zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	closed   bool

	done chan struct{}
}

// FeedURL builds the ws(s) URL of the feed endpoint for an http(s) base.
func FeedURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + protocol.PathJobs
	q := url.Values{}
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the feed connection. The token travels as a query parameter.
func Dial(ctx context.Context, baseURL, token string, sink Sink, logger zerolog.Logger) (*Stream, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	endpoint, err := FeedURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial feed: %w", err)
	}

	s := &Stream{
		conn:   conn,
		sink:   sink,
		logger: logger.With().Str("component", "stream").Logger(),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// RequestNext sends NEXT_JOB unless a request is already outstanding or the
// connection is gone.
func (s *Stream) RequestNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.inFlight {
		return false
	}
	s.inFlight = true
	if err := s.conn.WriteJSON(protocol.NextJob()); err != nil {
		s.inFlight = false
		s.logger.Debug().Err(err).Msg("write NEXT_JOB failed")
		return false
	}
	return true
}

func (s *Stream) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Done is closed once the read loop has stopped.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Close tears the connection down and waits for the read loop.
func (s *Stream) Close() error {
	s.mu.Lock()
	if !s.closed {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
	}
	s.mu.Unlock()

	err := s.conn.Close()
	<-s.done
	return err
}

func (s *Stream) readLoop() {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.closed = true
		// Nothing can answer an outstanding request any more.
		s.inFlight = false
		s.mu.Unlock()
		if s.sink != nil {
			s.sink.Detach()
		}
	}()

	for {
		var msg protocol.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("feed stream stopped")
			}
			return
		}

		switch msg.Type {
		case protocol.TypeJob:
			s.settle()
			if msg.Job != nil && s.sink != nil {
				s.sink.Receive(*msg.Job)
			}
		case protocol.TypeEnd:
			s.settle()
			if s.sink != nil {
				s.sink.End()
			}
		case protocol.TypeCatalogUpdated:
			if n, ok := s.sink.(CatalogNotifier); ok {
				n.CatalogUpdated(msg.Source, msg.Count)
			}
		default:
			s.logger.Debug().Str("type", msg.Type).Msg("ignoring unknown message")
		}
	}
}

func (s *Stream) settle() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

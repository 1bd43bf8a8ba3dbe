package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub indexes live feed connections by user. Feed replies never pass through
// it; it carries server pushes and closes every connection on shutdown.
type Hub struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]map[*Client]struct{}
	total  int

	// Joins and leaves share one channel so a client that unregisters right
	// after registering is never added after its removal.
	members chan membership
	pushes  chan []byte

	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
	logger   zerolog.Logger
}

type membership struct {
	c    *Client
	join bool
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		byUser:  make(map[uuid.UUID]map[*Client]struct{}),
		members: make(chan membership, 128),
		pushes:  make(chan []byte, 256),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger.With().Str("component", "ws").Logger(),
	}
}

// Run applies joins, leaves and pushes until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.disconnectAll()
			return
		case m := <-h.members:
			if m.join {
				h.add(m.c)
			} else {
				h.remove(m.c)
			}
		case msg := <-h.pushes:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	conns, ok := h.byUser[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.byUser[c.userID] = conns
	}
	conns[c] = struct{}{}
	h.total++
	perUser, total := len(conns), h.total
	h.mu.Unlock()

	h.logger.Debug().
		Str("user_id", c.userID.String()).
		Int("user_feeds", perUser).
		Int("total_feeds", total).
		Msg("feed connected")
}

func (h *Hub) remove(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	conns := h.byUser[c.userID]
	_, known := conns[c]
	if known {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.byUser, c.userID)
		}
		h.total--
	}
	total := h.total
	h.mu.Unlock()

	if known {
		c.closeSend()
		h.logger.Debug().Str("user_id", c.userID.String()).Int("total_feeds", total).Msg("feed disconnected")
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, h.total)
	for _, conns := range h.byUser {
		for c := range conns {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) fanOut(msg []byte) {
	clients := h.snapshot()
	dropped := 0
	for _, c := range clients {
		if !c.enqueue(msg) {
			dropped++
		}
	}
	h.logger.Debug().Int("feeds", len(clients)).Int("dropped", dropped).Msg("push delivered")
}

func (h *Hub) disconnectAll() {
	clients := h.snapshot()
	for _, c := range clients {
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
		c.closeSend()
	}
	h.mu.Lock()
	h.byUser = make(map[uuid.UUID]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()
	h.logger.Info().Int("feeds", len(clients)).Msg("feed connections closed")
}

func (h *Hub) Register(c *Client) {
	if h == nil {
		return
	}
	select {
	case h.members <- membership{c: c, join: true}:
	case <-h.quit:
	}
}

// Unregister is safe after Shutdown; the client's send side is closed
// directly then.
func (h *Hub) Unregister(c *Client) {
	if h == nil {
		return
	}
	select {
	case h.members <- membership{c: c}:
	case <-h.quit:
		c.closeSend()
	}
}

// Broadcast queues msg for every connection. It never blocks; a full queue
// drops the push.
func (h *Hub) Broadcast(msg []byte) {
	if h == nil {
		return
	}
	select {
	case h.pushes <- msg:
	default:
		h.logger.Warn().Msg("push dropped, queue full")
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// UserFeeds counts the open feeds of one user.
func (h *Hub) UserFeeds(userID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// Shutdown closes every connection with 1001 and waits up to timeout for Run
// to return.
func (h *Hub) Shutdown(timeout time.Duration) {
	if h == nil {
		return
	}
	h.quitOnce.Do(func() { close(h.quit) })
	select {
	case <-h.done:
	case <-time.After(timeout):
		h.logger.Warn().Msg("feed hub did not stop in time")
	}
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"swipehire/internal/protocol"
	"swipehire/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	nextJobTimeout = 10 * time.Second
	sendBuffer     = 16
)

// Client is one feed connection. ReadPump answers requests, WritePump is the
// only goroutine that writes frames.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	feed   usecase.FeedUsecase
	cursor *usecase.FeedCursor
	userID uuid.UUID
	logger zerolog.Logger

	send     chan []byte
	sendMu   sync.Mutex
	sendDone bool
}

func NewClient(hub *Hub, conn *websocket.Conn, feed usecase.FeedUsecase, cursor *usecase.FeedCursor, logger zerolog.Logger) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		feed:   feed,
		cursor: cursor,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
	if cursor != nil {
		c.userID = cursor.UserID
	}
	return c
}

// enqueue hands a frame to WritePump. It reports false when the connection is
// closing or hopelessly behind.
func (c *Client) enqueue(b []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendDone {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendDone {
		c.sendDone = true
		close(c.send)
	}
}

func (c *Client) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug().Err(err).Msg("feed read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug().Err(err).Msg("ignoring malformed feed message")
			continue
		}
		if msg.Type != protocol.TypeNextJob {
			continue
		}

		reply, err := c.next()
		if err != nil {
			c.logger.Error().Err(err).Str("user_id", c.userID.String()).Msg("next job failed")
			c.closeWith(websocket.CloseInternalServerErr, "feed unavailable")
			return
		}
		if !c.enqueue(reply) {
			return
		}
	}
}

func (c *Client) next() ([]byte, error) {
	if c.cursor == nil {
		return json.Marshal(protocol.End())
	}
	ctx, cancel := context.WithTimeout(context.Background(), nextJobTimeout)
	defer cancel()

	j, ok, err := c.feed.Next(ctx, c.cursor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return json.Marshal(protocol.End())
	}
	return json.Marshal(protocol.JobMessage(j))
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Debug().Err(err).Msg("feed write failed")
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

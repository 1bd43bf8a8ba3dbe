package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"swipehire/internal/pkg/jwt"
	"swipehire/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	hub    *Hub
	feed   usecase.FeedUsecase
	jwt    jwt.Service
	logger zerolog.Logger
}

func NewHandler(hub *Hub, feed usecase.FeedUsecase, jwtSvc jwt.Service, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, feed: feed, jwt: jwtSvc, logger: logger.With().Str("component", "ws").Logger()}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) HandleJobsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	return adaptor.HTTPHandler(h)(c)
}

// ServeHTTP upgrades first and then checks the token, so a rejected client
// sees a 1008 close frame rather than a failed handshake.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		reject(conn, "missing token")
		return
	}
	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		reject(conn, "invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	cursor, err := h.feed.Open(ctx, claims.UserID)
	cancel()
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		// Nothing ranked yet: every request is answered with END.
		cursor = nil
	case err != nil:
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("open feed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "feed unavailable"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	logger := h.logger.With().Str("user_id", claims.UserID.String()).Logger()
	client := NewClient(h.hub, conn, h.feed, cursor, logger)
	client.userID = claims.UserID
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

func reject(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(writeWait))
	_ = conn.Close()
}

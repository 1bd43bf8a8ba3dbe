// Package response renders the {status, message, data} envelope used by the
// auth, health and error paths. Feed endpoints answer flat documents through
// JSON.
package response

import "github.com/gofiber/fiber/v3"

type SemanticResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessageCreated             = "created"
	MessageTooLarge            = "payload too large"
	MessageServiceUnavailable  = "service unavailable"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

var defaultMessages = map[int]string{
	fiber.StatusOK:                    MessageOK,
	fiber.StatusCreated:               MessageCreated,
	fiber.StatusBadRequest:            MessageBadRequest,
	fiber.StatusUnauthorized:          MessageUnauthorized,
	fiber.StatusForbidden:             MessageForbidden,
	fiber.StatusNotFound:              MessageNotFound,
	fiber.StatusConflict:              MessageConflict,
	fiber.StatusRequestEntityTooLarge: MessageTooLarge,
	fiber.StatusUnprocessableEntity:   MessageUnprocessableEntity,
	fiber.StatusServiceUnavailable:    MessageServiceUnavailable,
}

func Success(c fiber.Ctx, status int, message string, data any) error {
	return envelope(c, status, message, data)
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	return envelope(c, status, message, data)
}

// JSON writes a body without the envelope, for endpoints whose clients expect
// a flat document.
func JSON(c fiber.Ctx, status int, body any) error {
	return c.Status(Status(status)).JSON(body)
}

// Status clamps anything outside the HTTP range to 500.
func Status(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

// MessageFor is the message used when a caller passes none.
func MessageFor(status int) string {
	if m, ok := defaultMessages[status]; ok {
		return m
	}
	if status >= fiber.StatusInternalServerError {
		return MessageInternalServerError
	}
	return MessageError
}

func envelope(c fiber.Ctx, status int, message string, data any) error {
	st := Status(status)
	if message == "" {
		message = MessageFor(st)
	}
	return c.Status(st).JSON(SemanticResponse{Status: st, Message: message, Data: data})
}

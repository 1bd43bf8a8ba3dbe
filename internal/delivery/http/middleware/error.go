package middleware

import (
	"errors"

	"swipehire/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// AppError is what handlers return to pick the status and message of the
// envelope. Cause is logged, never sent.
type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ErrorMiddleware renders every handler error as the response envelope and
// turns panics into 500s.
type ErrorMiddleware struct {
	logger zerolog.Logger
}

func NewErrorMiddleware(logger zerolog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger.With().Str("component", "http").Logger()}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error().
					Interface("panic", r).
					Str("rid", c.GetRespHeader(HeaderRequestID)).
					Str("path", c.Path()).
					Msg("panic recovered")
				err = response.Error(c, fiber.StatusInternalServerError, "", nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := classify(err)
		ev := m.logger.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = m.logger.Error()
		}
		ev.Err(err).
			Str("rid", c.GetRespHeader(HeaderRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg("request failed")

		return response.Error(c, status, msg, data)
	}
}

// classify maps an error to what the client sees. Server errors are reduced
// to a bare 500.
func classify(err error) (int, string, any) {
	status, msg := fiber.StatusInternalServerError, ""
	var data any

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status, msg, data = appErr.StatusCode, appErr.Message, appErr.Data
	case errors.As(err, &fiberErr):
		status, msg = fiberErr.Code, fiberErr.Message
	}

	if status <= 0 || status >= fiber.StatusInternalServerError {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}
	if msg == "" {
		msg = response.MessageFor(status)
	}
	return status, msg, data
}

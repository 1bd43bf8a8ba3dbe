package handler

import (
	"context"
	"io"

	"swipehire/internal/pkg/response"
	"swipehire/internal/resume"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// ScriptParser parses an upload by running an external script.
type ScriptParser interface {
	Available() bool
	Run(ctx context.Context, filename string, data []byte) (resume.Parsed, error)
}

// DevResumeHandler is the unauthenticated parsing stub used while developing
// the client. It answers with the fixture when no script is installed.
type DevResumeHandler struct {
	script   ScriptParser
	maxBytes int64
	logger   zerolog.Logger
}

func NewDevResumeHandler(script ScriptParser, maxUploadBytes int64, logger zerolog.Logger) *DevResumeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DevResumeHandler{
		script:   script,
		maxBytes: maxUploadBytes,
		logger:   logger.With().Str("component", "dev_resume").Logger(),
	}
}

func (h *DevResumeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/parse-resume", h.Parse)
}

func (h *DevResumeHandler) Parse(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.JSON(c, fiber.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}
	if fh.Size > h.maxBytes {
		return response.JSON(c, fiber.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	}

	if h.script == nil || !h.script.Available() {
		h.logger.Debug().Str("file", fh.Filename).Msg("no resume script, answering with fixture")
		return response.JSON(c, fiber.StatusOK, map[string]any{"parsed": resume.Fixture()})
	}

	f, err := fh.Open()
	if err != nil {
		return response.JSON(c, fiber.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes))
	if err != nil {
		return response.JSON(c, fiber.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	parsed, err := h.script.Run(c.Context(), fh.Filename, data)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", fh.Filename).Msg("resume script failed")
		return response.JSON(c, fiber.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return response.JSON(c, fiber.StatusOK, map[string]any{"parsed": parsed})
}

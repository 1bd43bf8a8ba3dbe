package handler

import (
	"errors"
	"io"

	"swipehire/internal/delivery/http/middleware"
	"swipehire/internal/domain/job"
	"swipehire/internal/pkg/response"
	"swipehire/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc       usecase.ProfileUsecase
	maxBytes int64
}

type parseResumeResponse struct {
	Success bool `json:"success"`
	usecase.ParseResult
}

type rankedJobsResponse struct {
	Success    bool      `json:"success"`
	RankedJobs []job.Job `json:"ranked_jobs"`
	TotalJobs  int       `json:"total_jobs"`
}

func NewProfileHandler(uc usecase.ProfileUsecase, maxUploadBytes int64) *ProfileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ProfileHandler{uc: uc, maxBytes: maxUploadBytes}
}

// RegisterRoutes expects r to be behind the auth middleware.
func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/parse-resume", h.ParseResume)
	r.Get("/save-profile", h.NextBatch)
	r.Post("/save-profile", h.SaveProfile)
	r.Get("/me", h.Me)
}

func (h *ProfileHandler) ParseResume(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file", nil, err)
	}
	if fh.Size > h.maxBytes {
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", nil, nil)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file", nil, err)
	}
	if int64(len(data)) > h.maxBytes {
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", nil, nil)
	}

	res, err := h.uc.ParseResume(c.Context(), userID, middleware.Email(c), fh.Filename, data)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.JSON(c, fiber.StatusOK, parseResumeResponse{Success: true, ParseResult: res})
}

func (h *ProfileHandler) NextBatch(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	b, err := h.uc.NextBatch(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.JSON(c, fiber.StatusOK, batchResponse(b))
}

func (h *ProfileHandler) SaveProfile(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var jobDict map[string]any
	if err := c.Bind().Body(&jobDict); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	// Accept both the bare dict and {"job_dict": {...}}.
	if inner, ok := jobDict["job_dict"].(map[string]any); ok && len(jobDict) == 1 {
		jobDict = inner
	}

	b, err := h.uc.SaveJobDict(c.Context(), userID, jobDict)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.JSON(c, fiber.StatusOK, batchResponse(b))
}

func (h *ProfileHandler) Me(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	p, err := h.uc.Me(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.JSON(c, fiber.StatusOK, map[string]any{"success": true, "data": p})
}

func batchResponse(b usecase.Batch) rankedJobsResponse {
	jobs := b.Jobs
	if jobs == nil {
		jobs = []job.Job{}
	}
	return rankedJobsResponse{Success: true, RankedJobs: jobs, TotalJobs: b.Total}
}

func mapProfileUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrUnsupportedFile):
		return middleware.NewAppError(fiber.StatusBadRequest, "Only PDF and DOCX files are supported", nil, err)
	case errors.Is(err, usecase.ErrNoResumeText):
		return middleware.NewAppError(fiber.StatusBadRequest, "Could not extract text from resume", nil, err)
	case errors.Is(err, usecase.ErrEmptyJobDict):
		return middleware.NewAppError(fiber.StatusBadRequest, "job_dict is required", nil, err)
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found, upload a resume first", nil, err)
	case errors.Is(err, usecase.ErrResumeParse):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Could not parse resume", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already taken")
	ErrProfileNotFound = errors.New("profile not found")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	// SaveParsed stores a freshly parsed resume and resets the cursor to 0.
	SaveParsed(ctx context.Context, userID uuid.UUID, info, jobDict map[string]any, keys DynamicKeys) error
	// SaveJobDict replaces the job dict and resets the cursor to 0.
	SaveJobDict(ctx context.Context, userID uuid.UUID, jobDict map[string]any) error
	SaveRanking(ctx context.Context, userID uuid.UUID, ids []string, scores []float64) error
	SetCursor(ctx context.Context, userID uuid.UUID, cursor int) error
}

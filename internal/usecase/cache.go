package usecase

import (
	"context"
	"time"
)

// JSONCache is the slice of the Redis cache the usecases need. Implementations
// must treat an unavailable backend as a miss.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// noCache is used when no cache is wired.
type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (noCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Delete(context.Context, string) error                      { return nil }
func (noCache) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

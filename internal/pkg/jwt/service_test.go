package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestHMACService_AccessRoundTrip(t *testing.T) {
	s := newTestService()
	id := uuid.New()

	tok, err := s.GenerateAccessToken(id, "ada@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := s.ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != id || claims.Email != "ada@example.com" || claims.TokenType != TokenTypeAccess {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("expected issuer %q, got %q", Issuer, claims.Issuer)
	}
}

func TestHMACService_RefreshIsNotAccess(t *testing.T) {
	s := newTestService()
	tok, err := s.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := s.ValidateAccessToken(tok); err == nil {
		t.Fatalf("refresh token must not pass as access token")
	}
	claims, err := s.ValidateToken(tok)
	if err != nil || !s.IsRefreshToken(claims) {
		t.Fatalf("expected valid refresh token, got %+v %v", claims, err)
	}
}

func TestHMACService_Expired(t *testing.T) {
	now := time.Now()
	s := newTestService().WithClock(func() time.Time { return now })
	tok, err := s.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	s.WithClock(func() time.Time { return now.Add(time.Hour) })
	if _, err := s.ValidateAccessToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_Garbage(t *testing.T) {
	if _, err := newTestService().ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	other := NewHMACService("different", "different", time.Minute, time.Minute)
	tok, _ := other.GenerateAccessToken(uuid.New(), "")
	if _, err := newTestService().ValidateAccessToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("foreign signature must be invalid, got %v", err)
	}
}

package middleware

import (
	"errors"
	"strings"

	"swipehire/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const ctxPrincipalKey = "principal"

// Principal is the caller as the access token describes them.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware requires a bearer access token. Refresh tokens are refused.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Missing or invalid Authorization header", nil, nil)
		}

		claims, err := m.jwt.ValidateAccessToken(token)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		case err != nil:
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(ctxPrincipalKey, Principal{UserID: claims.UserID, Email: claims.Email})
		return c.Next()
	}
}

func principal(c fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(ctxPrincipalKey).(Principal)
	return p, ok && p.UserID != uuid.Nil
}

// UserID reads what the auth middleware stored.
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	p, ok := principal(c)
	return p.UserID, ok
}

func Email(c fiber.Ctx) string {
	p, _ := principal(c)
	return p.Email
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" value.
func BearerToken(authHeader string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

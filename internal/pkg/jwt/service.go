// Package jwt issues and checks the HS256 token pair. Access and refresh
// tokens are signed with different secrets so one can never stand in for the
// other.
package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Issuer is stamped on every token and required on validation.
const Issuer = "swipehire"

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"token_type"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (Claims, error)
	// ValidateAccessToken rejects refresh tokens.
	ValidateAccessToken(tokenString string) (Claims, error)
	IsRefreshToken(claims Claims) bool
}

type keyring struct {
	secret []byte
	ttl    time.Duration
}

type HMACService struct {
	keys map[string]keyring
	now  func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessExpiresIn, refreshExpiresIn time.Duration) *HMACService {
	return &HMACService{
		keys: map[string]keyring{
			TokenTypeAccess:  {secret: []byte(accessSecret), ttl: accessExpiresIn},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: refreshExpiresIn},
		},
		now: time.Now,
	}
}

// WithClock swaps the time source; tests use it to expire tokens.
func (s *HMACService) WithClock(now func() time.Time) *HMACService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.sign(TokenTypeAccess, userID, email)
}

func (s *HMACService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.sign(TokenTypeRefresh, userID, "")
}

// ValidateToken accepts either kind. Expiry wins over a bad signature when
// reporting, so clients know to refresh.
func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	claims, accessErr := s.parse(tokenString, TokenTypeAccess)
	if accessErr == nil {
		return claims, nil
	}
	claims, refreshErr := s.parse(tokenString, TokenTypeRefresh)
	if refreshErr == nil {
		return claims, nil
	}
	if errors.Is(accessErr, ErrTokenExpired) || errors.Is(refreshErr, ErrTokenExpired) {
		return Claims{}, ErrTokenExpired
	}
	return Claims{}, ErrTokenInvalid
}

func (s *HMACService) ValidateAccessToken(tokenString string) (Claims, error) {
	return s.parse(tokenString, TokenTypeAccess)
}

func (s *HMACService) IsRefreshToken(claims Claims) bool {
	return claims.TokenType == TokenTypeRefresh
}

func (s *HMACService) sign(tokenType string, userID uuid.UUID, email string) (string, error) {
	k, ok := s.keys[tokenType]
	if !ok || len(k.secret) == 0 || k.ttl <= 0 {
		return "", ErrTokenInvalid
	}

	now := s.now().UTC()
	c := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(k.ttl)),
			Subject:   userID.String(),
			Issuer:    Issuer,
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(k.secret)
}

// parse checks the signature with the secret of tokenType and insists the
// claims say the same type.
func (s *HMACService) parse(tokenString, tokenType string) (Claims, error) {
	k, ok := s.keys[tokenType]
	if !ok || len(k.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}

	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(*jwtlib.Token) (any, error) {
		return k.secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil, tok == nil, !tok.Valid:
		return Claims{}, ErrTokenInvalid
	case c.TokenType != tokenType:
		return Claims{}, ErrWrongTokenType
	}
	return c, nil
}

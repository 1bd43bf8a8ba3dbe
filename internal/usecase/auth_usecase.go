package usecase

import (
	"context"
	"errors"
	"strings"

	"swipehire/internal/domain/user"
	"swipehire/internal/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
	ErrInternal               = errors.New("internal error")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
)

const minPasswordLen = 8

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenPair is what register, login and refresh hand back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (user.User, TokenPair, error)
	Login(ctx context.Context, in LoginInput) (user.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// Auth is the authentication provider: bcrypt credentials and HS256 token
// pairs. The access token carries the email so resume uploads can fall back
// to it.
type Auth struct {
	users user.Repository
	jwt   jwt.Service
	cost  int
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service) *Auth {
	return &Auth{users: users, jwt: jwtSvc, cost: bcrypt.DefaultCost}
}

func (u *Auth) Register(ctx context.Context, in RegisterInput) (user.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(strings.TrimSpace(in.Password)) < minPasswordLen {
		return user.User{}, TokenPair{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	usr := user.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: string(hash)}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, TokenPair{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, TokenPair{}, ErrInternal
	}

	created, err := u.users.GetByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}
	return u.withTokens(created)
}

func (u *Auth) Login(ctx context.Context, in LoginInput) (user.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return user.User{}, TokenPair{}, ErrInternal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}
	return u.withTokens(usr)
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, ErrInternal
	}
	return u.issue(usr)
}

func (u *Auth) withTokens(usr user.User) (user.User, TokenPair, error) {
	pair, err := u.issue(usr)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	usr.PasswordHash = ""
	return usr, pair, nil
}

func (u *Auth) issue(usr user.User) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.Email)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// normalizeEmail lower-cases and rejects anything without a local part and a
// domain.
func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email
}

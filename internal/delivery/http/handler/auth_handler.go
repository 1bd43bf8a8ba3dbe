package handler

import (
	"errors"
	"strings"

	"swipehire/internal/delivery/http/middleware"
	"swipehire/internal/domain/user"
	"swipehire/internal/pkg/response"
	"swipehire/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// AuthHandler serves the token endpoints. The client keeps the access token
// as its bearer for every other call.
type AuthHandler struct {
	uc usecase.AuthUsecase
}

type credentials struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	User user.User `json:"user"`
	usecase.TokenPair
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	in, err := bindCredentials(c)
	if err != nil {
		return err
	}
	usr, pair, err := h.uc.Register(c.Context(), usecase.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		return authError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, sessionResponse{User: usr, TokenPair: pair})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	in, err := bindCredentials(c)
	if err != nil {
		return err
	}
	usr, pair, err := h.uc.Login(c.Context(), usecase.LoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		return authError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, sessionResponse{User: usr, TokenPair: pair})
}

// Refresh reads the refresh token from the Authorization header, falling
// back to the refresh_token body field.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		in, err := bindCredentials(c)
		if err != nil {
			return err
		}
		tok = strings.TrimSpace(in.RefreshToken)
	}
	if tok == "" {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	pair, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return authError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, pair)
}

// bindCredentials tolerates an empty body so refresh can rely on the header.
func bindCredentials(c fiber.Ctx) (credentials, error) {
	var in credentials
	if len(c.Body()) == 0 {
		return in, nil
	}
	if err := c.Bind().Body(&in); err != nil {
		return in, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return in, nil
}

var authErrors = []struct {
	err    error
	status int
	msg    string
}{
	{usecase.ErrEmailAlreadyRegistered, fiber.StatusConflict, "Email already registered"},
	{usecase.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password"},
	{usecase.ErrInvalidInput, fiber.StatusBadRequest, "Bad request"},
	{usecase.ErrRefreshTokenExpired, fiber.StatusUnauthorized, "Refresh token expired"},
	{usecase.ErrInvalidRefreshToken, fiber.StatusUnauthorized, "Invalid refresh token"},
	{usecase.ErrUnauthorized, fiber.StatusUnauthorized, "Unauthorized"},
}

func authError(err error) error {
	for _, m := range authErrors {
		if errors.Is(err, m.err) {
			return middleware.NewAppError(m.status, m.msg, nil, err)
		}
	}
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}

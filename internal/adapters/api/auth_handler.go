package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarzotto/asta/internal/domain/users"
	"github.com/dmarzotto/asta/pkg/auth"
)

// AuthHandler serves registration, login and profile endpoints
type AuthHandler struct {
	users  *users.Service
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *users.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: userService, logger: logger}
}

// Register creates a new account
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	user, err := h.users.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates and returns a signed token
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	token, expiresAt, user, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	user, err := h.users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

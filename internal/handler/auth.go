package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/middleware"
	"github.com/poolforyou/poolforyou-api/internal/service"
)

// AuthHandler serves login, logout and the current identity.
type AuthHandler struct {
	Users  *service.UserService
	Access *service.AccessControl
}

func NewAuthHandler(u *service.UserService, a *service.AccessControl) *AuthHandler {
	return &AuthHandler{Users: u, Access: a}
}

// loginReq accepts JSON or an OAuth2 style password form, where the email
// travels as "username".
type loginReq struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	_, tok, err := h.Users.Login(c.Request().Context(), email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResp{AccessToken: tok.Token, TokenType: "bearer", ExpiresAt: tok.Exp})
}

// Logout revokes the presented session when revocation is enabled.  Without
// it the client simply drops the token.
func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.Access.Revoke(c.Request().Context(), middleware.SessionToken(c))
	switch {
	case errors.Is(err, service.ErrRevocationDisabled):
		return c.JSON(http.StatusOK, echo.Map{"revoked": false})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": true})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return service.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, u)
}

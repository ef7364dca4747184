package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/service"
)

// UserHandler serves account provisioning and activation.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler { return &UserHandler{Users: u} }

type createUserReq struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// CreateUser provisions an account and mails its activation link.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	u, err := h.Users.CreateUser(c.Request().Context(), req.Name, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": u.ID, "email": u.Email, "role": u.Role})
}

type activateReq struct {
	Token    string `query:"token" json:"token"`
	Password string `query:"password" json:"password"`
}

// Activate sets the first password.  The token and password may come in the
// query string, as the activation page sends them, or in a JSON body.
func (h *UserHandler) Activate(c echo.Context) error {
	var req activateReq
	b := &echo.DefaultBinder{}
	if err := b.BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := b.BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Token == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and password required")
	}
	if err := h.Users.ActivateAccount(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account activated"})
}

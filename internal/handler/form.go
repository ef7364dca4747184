package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/form"
)

// FormHandler publishes the active work report form.
type FormHandler struct {
	Forms *form.Registry
}

func NewFormHandler(r *form.Registry) *FormHandler { return &FormHandler{Forms: r} }

func (h *FormHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Forms.Active())
}

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/service"
)

// statusOf maps a service failure to its HTTP status and client message.
// Unknown errors are internal and their text is not exposed.
func statusOf(err error) (int, echo.Map) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields}
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr.Code, echo.Map{"error": fmt.Sprint(herr.Message)}
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, echo.Map{"error": "unauthorized"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, echo.Map{"error": "invalid credentials"}
	case errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden, echo.Map{"error": "email not verified"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, echo.Map{"error": "forbidden"}
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, echo.Map{"error": "email already registered"}
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest, echo.Map{"error": "invalid or expired token"}
	case errors.Is(err, service.ErrAlreadyActivated):
		return http.StatusBadRequest, echo.Map{"error": "account already activated"}
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, echo.Map{"error": "user not found"}
	case errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound, echo.Map{"error": "work report not found"}
	case errors.Is(err, service.ErrRevocationDisabled):
		return http.StatusNotImplemented, echo.Map{"error": "session revocation disabled"}
	}
	return http.StatusInternalServerError, echo.Map{"error": "internal error"}
}

// ErrorHandler is installed as echo's HTTPErrorHandler so handlers and
// middleware can return service errors directly.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := statusOf(err)
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

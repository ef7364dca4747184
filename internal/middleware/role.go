package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/service"
)

// Authorize lets the request through only when the authenticated user's
// role is allowed to perform op.  It must run after Authenticate.
func Authorize(ac *service.AccessControl, op service.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return service.ErrUnauthorized
			}
			if _, err := ac.Authorize(u, op); err != nil {
				return err
			}
			return next(c)
		}
	}
}

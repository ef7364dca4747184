package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/service"
)

// Authenticate requires a valid "Bearer <session token>" header and stores
// the resolved user in the context.
func Authenticate(ac *service.AccessControl) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return service.ErrUnauthorized
			}
			u, err := ac.ResolveIdentity(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			c.Set(userKey, u)
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}

func bearer(h string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

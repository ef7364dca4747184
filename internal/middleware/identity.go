package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

const (
	userKey  = "user"
	tokenKey = "session_token"
)

// CurrentUser returns the user resolved by Authenticate.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}

// SessionToken returns the raw bearer token of the request.
func SessionToken(c echo.Context) string {
	s, _ := c.Get(tokenKey).(string)
	return s
}

// userID identifies the caller for rate limiting; "guest" before
// authentication.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}

package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	binderr "github.com/dstackai/dstack/pkg/bindings/errors"
	ddb "github.com/dstackai/dstack/pkg/db"
)

const authUserKey = "dstack.authUser"

// Authenticate resolves the "Authorization: Bearer <token>" header to a
// user and stores it in the request context.
//
// When required is true, requests without a valid token are rejected
// with 401. Otherwise requests without the header pass as anonymous;
// a header carrying a bad token is still rejected.
func Authenticate(dbUser ddb.UserInterface, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				if required {
					return binderr.Unauthorized("authorization required", nil)
				}
				return next(c)
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return binderr.Unauthorized("bearer token required", nil)
			}

			user, err := dbUser.GetByToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, ddb.ErrMissing) {
					return binderr.Unauthorized("unknown token", nil)
				}
				return binderr.InternalServerError(err)
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// SetUser binds an authenticated user to the request context.
func SetUser(c echo.Context, user ddb.User) {
	c.Set(authUserKey, user)
}

// UserFrom picks the authenticated user out of the request context.
func UserFrom(c echo.Context) (ddb.User, bool) {
	user, ok := c.Get(authUserKey).(ddb.User)
	return user, ok
}

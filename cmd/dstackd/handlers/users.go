package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	binderr "github.com/dstackai/dstack/pkg/bindings/errors"
	bindusers "github.com/dstackai/dstack/pkg/bindings/users"
)

// WhoAmIHandler handles "GET /api/users/me".
//
// It tells which user the presented token belongs to; the CLI uses it
// to verify profiles.
func WhoAmIHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := UserFrom(c)
		if !ok {
			return binderr.Unauthorized("authorization required", nil)
		}
		return c.JSON(http.StatusOK, bindusers.ComposeDetail(user))
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	binderr "github.com/dstackai/dstack/pkg/bindings/errors"
	bindstacks "github.com/dstackai/dstack/pkg/bindings/stacks"
	ddb "github.com/dstackai/dstack/pkg/db"
)

// FindStackHandler handles "GET /api/stacks".
//
// Query parameters:
//
//   - user: restrict to stacks owned by this user.
//
//   - param: "KEY:VALUE", repeatable. Restrict to stacks whose head frame
//     carries all of them.
//
// Private stacks owned by others are never listed.
func FindStackHandler(dbStack ddb.StackInterface, dbFrame ddb.FrameInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		args := ddb.StackFindArgs{Owner: c.QueryParam("user")}
		if user, ok := UserFrom(c); ok {
			args.Requester = user.Name
		}
		for _, raw := range c.QueryParams()["param"] {
			p := apiparams.Param{}
			if err := p.Parse(raw); err != nil {
				return binderr.BadRequest(`query "param" should be formed as KEY:VALUE`, err)
			}
			args.Params = append(args.Params, ddb.Param{Key: p.Key, Value: p.Value})
		}

		found, err := dbStack.Find(ctx, args)
		if err != nil {
			return binderr.InternalServerError(err)
		}

		summaries := make([]apistacks.Summary, 0, len(found))
		for _, stack := range found {
			var head *ddb.Frame
			if stack.Head != "" {
				h, err := dbFrame.Get(ctx, stack.Head)
				if err != nil {
					return binderr.InternalServerError(err)
				}
				head = &h
			}
			summaries = append(summaries, bindstacks.ComposeSummary(stack, head))
		}

		return c.JSON(http.StatusOK, summaries)
	}
}

// GetStackHandler handles "GET /api/stacks/:user/:name".
//
// The response carries the head frame with pre-signed attachment URLs
// and the list of closed frames.
func GetStackHandler(
	dbStack ddb.StackInterface,
	dbFrame ddb.FrameInterface,
	signer URLSigner,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userName, name := c.Param("user"), c.Param("name")

		stack, err := dbStack.Get(ctx, userName, name)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}
		if !visible(c, stack) {
			return binderr.NotFound()
		}

		var head *ddb.Frame
		if stack.Head != "" {
			h, err := dbFrame.Get(ctx, stack.Head)
			if err != nil {
				return binderr.InternalServerError(err)
			}
			head = &h
		}

		history, err := dbFrame.FindByStack(ctx, userName, name)
		if err != nil {
			return binderr.InternalServerError(err)
		}

		detail := bindstacks.ComposeDetail(stack, head, history)
		if detail.Head != nil {
			for i := range detail.Head.Attachments {
				url, err := signer.Sign(ctx, detail.Head.FrameId, detail.Head.Attachments[i].Index)
				if err != nil {
					return binderr.InternalServerError(err)
				}
				detail.Head.Attachments[i].URL = url
			}
		}

		return c.JSON(http.StatusOK, detail)
	}
}

// DeleteStackHandler handles "DELETE /api/stacks/:user/:name".
//
// Only the owner may delete a stack.
func DeleteStackHandler(dbStack ddb.StackInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userName, name := c.Param("user"), c.Param("name")

		user, ok := UserFrom(c)
		if !ok {
			return binderr.Unauthorized("authorization required", nil)
		}
		if user.Name != userName {
			return binderr.Forbidden("not an owner of the stack", nil)
		}

		if err := dbStack.Delete(ctx, userName, name); err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// UpdateStackAccessHandler handles "PUT /api/stacks/:user/:name/access".
//
// Only the owner may change visibility.
func UpdateStackAccessHandler(dbStack ddb.StackInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userName, name := c.Param("user"), c.Param("name")

		user, ok := UserFrom(c)
		if !ok {
			return binderr.Unauthorized("authorization required", nil)
		}
		if user.Name != userName {
			return binderr.Forbidden("not an owner of the stack", nil)
		}

		change := apistacks.AccessChange{}
		if err := c.Bind(&change); err != nil {
			return binderr.BadRequest(`body should be JSON like {"private": true}`, err)
		}

		if err := dbStack.UpdateAccess(ctx, userName, name, change.Private); err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		stack, err := dbStack.Get(ctx, userName, name)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, bindstacks.ComposeSummary(stack, nil))
	}
}

// visible tells whether the requester may read the stack.
func visible(c echo.Context, stack ddb.Stack) bool {
	if !stack.Private {
		return true
	}
	user, ok := UserFrom(c)
	return ok && user.Name == stack.UserName
}

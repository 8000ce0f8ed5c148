package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	binderr "github.com/dstackai/dstack/pkg/bindings/errors"
	bindframes "github.com/dstackai/dstack/pkg/bindings/frames"
	ddb "github.com/dstackai/dstack/pkg/db"
)

// OpenFrameHandler handles "POST /api/stacks/:user/:name/frames".
//
// It opens a new frame on the stack, creating the stack when this is
// its first frame. Only the owner may push.
func OpenFrameHandler(dbFrame ddb.FrameInterface) echo.HandlerFunc {
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
		if _, err := apistacks.ParsePath(userName+"/"+name, ""); err != nil {
			return binderr.BadRequest("bad stack name", err)
		}

		req := apiframes.NewFrame{}
		if err := c.Bind(&req); err != nil {
			return binderr.BadRequest(`body should be JSON like {"message": "..."}`, err)
		}

		frame, err := dbFrame.New(ctx, userName, name, req.Message)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		return c.JSON(http.StatusCreated, bindframes.ComposeSummary(frame))
	}
}

// GetFrameHandler handles "GET /api/frames/:frameId".
//
// Attachments in the response carry pre-signed download URLs.
func GetFrameHandler(
	dbFrame ddb.FrameInterface,
	dbStack ddb.StackInterface,
	signer URLSigner,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		frameId := c.Param("frameId")

		frame, err := dbFrame.Get(ctx, frameId)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		stack, err := dbStack.Get(ctx, frame.UserName, frame.StackName)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		if !visible(c, stack) {
			return binderr.NotFound()
		}

		detail := bindframes.ComposeDetail(frame)
		for i := range detail.Attachments {
			url, err := signer.Sign(ctx, frameId, detail.Attachments[i].Index)
			if err != nil {
				return binderr.InternalServerError(err)
			}
			detail.Attachments[i].URL = url
		}

		return c.JSON(http.StatusOK, detail)
	}
}

// CloseFrameHandler handles "PUT /api/frames/:frameId/close".
//
// Closing seals the frame and moves the head of its stack to it.
// A frame without attachments cannot be closed; closing twice conflicts.
func CloseFrameHandler(dbFrame ddb.FrameInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		frameId := c.Param("frameId")

		user, ok := UserFrom(c)
		if !ok {
			return binderr.Unauthorized("authorization required", nil)
		}

		frame, err := dbFrame.Get(ctx, frameId)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}
		if frame.UserName != user.Name {
			return binderr.Forbidden("not an owner of the frame", nil)
		}

		closed, err := dbFrame.Close(ctx, frameId)
		if err != nil {
			switch {
			case errors.Is(err, ddb.ErrMissing):
				return binderr.NotFound()
			case errors.Is(err, ddb.ErrFrameClosed):
				return binderr.Conflict("frame is closed already")
			case errors.Is(err, ddb.ErrFrameEmpty):
				return binderr.Conflict(
					"frame has no attachments",
					binderr.WithAdvice("push at least one attachment before closing"),
				)
			default:
				return binderr.InternalServerError(err)
			}
		}

		return c.JSON(http.StatusOK, bindframes.ComposeDetail(closed))
	}
}

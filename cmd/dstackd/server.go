package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dstackai/dstack/cmd/dstackd/handlers"
	configs "github.com/dstackai/dstack/pkg/configs/server"
	ddb "github.com/dstackai/dstack/pkg/db"
	"github.com/dstackai/dstack/pkg/keychain"
	"github.com/dstackai/dstack/pkg/storage"
	"github.com/dstackai/dstack/pkg/utils/echoutil"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

func BuildServer(
	db ddb.StackDatabase,
	store storage.Store,
	conf configs.Config,
	loglevel string,
) *echo.Echo {

	e := echo.New()

	echoutil.SetLevel(e, loglevel)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())

	// logging for server-side latency.
	e.Use(echoutil.LogHandlerFunc)

	required := handlers.Authenticate(db.Users(), true)
	optional := handlers.Authenticate(db.Users(), false)

	signer := handlers.NewURLSigner(
		keychain.New(db.Keys()), conf.SignedURLLifetime,
	)

	e.GET(api("users/me"), handlers.WhoAmIHandler(), required)

	e.GET(api("stacks"), handlers.FindStackHandler(
		db.Stacks(), db.Frames(),
	), optional)
	e.GET(api("stacks/:user/:name"), handlers.GetStackHandler(
		db.Stacks(), db.Frames(), signer,
	), optional)
	e.DELETE(api("stacks/:user/:name"), handlers.DeleteStackHandler(
		db.Stacks(),
	), required)
	e.PUT(api("stacks/:user/:name/access"), handlers.UpdateStackAccessHandler(
		db.Stacks(),
	), required)
	e.POST(api("stacks/:user/:name/frames"), handlers.OpenFrameHandler(
		db.Frames(),
	), required)

	e.GET(api("frames/:frameId"), handlers.GetFrameHandler(
		db.Frames(), db.Stacks(), signer,
	), optional)
	e.PUT(api("frames/:frameId/close"), handlers.CloseFrameHandler(
		db.Frames(),
	), required)
	e.POST(api("frames/:frameId/attachments"), handlers.UploadAttachmentHandler(
		db.Frames(), store,
	), required)
	e.GET(api("frames/:frameId/attachments/:index"), handlers.DownloadAttachmentHandler(
		db.Frames(), db.Stacks(), store, signer,
	), optional)

	e.Server.ReadHeaderTimeout = 30 * time.Second

	return e
}

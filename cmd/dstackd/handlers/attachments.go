package handlers

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apiparams "github.com/dstackai/dstack/api/types/params"
	binderr "github.com/dstackai/dstack/pkg/bindings/errors"
	bindframes "github.com/dstackai/dstack/pkg/bindings/frames"
	ddb "github.com/dstackai/dstack/pkg/db"
	"github.com/dstackai/dstack/pkg/keychain"
	"github.com/dstackai/dstack/pkg/storage"
	kio "github.com/dstackai/dstack/pkg/utils/io"
)

// ChecksumTrailer is the trailer header carrying the hex MD5 checksum
// of a streamed payload.
const ChecksumTrailer = "x-checksum-md5"

// UploadAttachmentHandler handles "POST /api/frames/:frameId/attachments".
//
// The request body is the raw payload. Metadata rides along with it:
//
//   - Content-Type header: media type of the payload.
//
//   - query "description": human readable description.
//
//   - query "application": producing application name.
//
//   - query "param": "KEY:VALUE", repeatable.
//
//   - trailer "x-checksum-md5": hex MD5 of the body. When sent,
//     a mismatching payload is rejected and discarded.
func UploadAttachmentHandler(
	dbFrame ddb.FrameInterface,
	store storage.Store,
) echo.HandlerFunc {
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
		if frame.ClosedAt != nil {
			return binderr.Conflict("frame is closed already")
		}

		contentType := c.Request().Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		params := []ddb.Param{}
		for _, raw := range c.QueryParams()["param"] {
			p := apiparams.Param{}
			if err := p.Parse(raw); err != nil {
				return binderr.BadRequest(`query "param" should be formed as KEY:VALUE`, err)
			}
			params = append(params, ddb.Param{Key: p.Key, Value: p.Value})
		}

		blobRef := uuid.NewString()
		chr := kio.NewMD5Reader(c.Request().Body)

		written, err := store.Put(ctx, blobRef, chr)
		if err != nil {
			return binderr.InternalServerError(err)
		}
		checksum := hex.EncodeToString(chr.Sum())

		if sent := c.Request().Trailer.Get(ChecksumTrailer); sent != "" && sent != checksum {
			dropBlob(store, blobRef)
			return binderr.BadRequest(
				fmt.Sprintf("checksum mismatch: %s (sent) != %s (received)", sent, checksum),
				nil,
			)
		}

		attachment, err := dbFrame.AddAttachment(ctx, frameId, ddb.AttachmentSpec{
			Description: c.QueryParam("description"),
			ContentType: contentType,
			Application: c.QueryParam("application"),
			Length:      written,
			Checksum:    checksum,
			BlobRef:     blobRef,
			Params:      params,
		})
		if err != nil {
			dropBlob(store, blobRef)
			switch {
			case errors.Is(err, ddb.ErrMissing):
				return binderr.NotFound()
			case errors.Is(err, ddb.ErrFrameClosed):
				return binderr.Conflict("frame is closed already")
			default:
				return binderr.InternalServerError(err)
			}
		}

		return c.JSON(http.StatusCreated, bindframes.ComposeAttachment(attachment))
	}
}

// dropBlob discards a blob which did not make it into an attachment.
// The garbage sweep cannot reach it, so remove it here.
func dropBlob(store storage.Store, blobRef string) {
	store.Remove(context.Background(), blobRef)
}

// DownloadAttachmentHandler handles "GET /api/frames/:frameId/attachments/:index".
//
// The request is authorized either by a Bearer token of a user who can
// see the stack, or by a "sig" query parameter from a pre-signed URL.
//
// The payload streams back with its stored Content-Type and the
// "x-checksum-md5" header for client-side verification.
func DownloadAttachmentHandler(
	dbFrame ddb.FrameInterface,
	dbStack ddb.StackInterface,
	store storage.Store,
	signer URLSigner,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		frameId := c.Param("frameId")

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return binderr.BadRequest("attachment index should be an integer", err)
		}

		frame, err := dbFrame.Get(ctx, frameId)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}

		if sig := c.QueryParam("sig"); sig != "" {
			if err := signer.Verify(ctx, sig, frameId, index); err != nil {
				if errors.Is(err, keychain.ErrInvalidToken) || errors.Is(err, keychain.ErrNoKeyFound) {
					return binderr.Unauthorized("bad signature", err)
				}
				return binderr.InternalServerError(err)
			}
		} else {
			stack, err := dbStack.Get(ctx, frame.UserName, frame.StackName)
			if err != nil {
				return binderr.InternalServerError(err)
			}
			if !visible(c, stack) {
				return binderr.NotFound()
			}
		}

		var attachment *ddb.Attachment
		for i := range frame.Attachments {
			if frame.Attachments[i].Index == index {
				attachment = &frame.Attachments[i]
				break
			}
		}
		if attachment == nil {
			return binderr.NotFound()
		}

		payload, size, err := store.Get(ctx, attachment.BlobRef)
		if err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				return binderr.NotFound()
			}
			return binderr.InternalServerError(err)
		}
		defer payload.Close()

		c.Response().Header().Set("Content-Length", strconv.FormatInt(size, 10))
		c.Response().Header().Set(ChecksumTrailer, attachment.Checksum)
		return c.Stream(http.StatusOK, attachment.ContentType, payload)
	}
}

package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/dstackai/dstack/api/types/errors"
)

type ErrorMessageOption func(in *apierr.ErrorMessage)

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) {
		if advice != "" {
			in.Advice = advice
		}
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) {
		if err != nil {
			in.Cause = err
		}
	}
}

// NewErrorMessage wraps reason in the API error envelope as an echo error.
// The message doubles as the internal error so echo logs the cause.
func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := apierr.ErrorMessage{Reason: reason}
	for _, opt := range opts {
		opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, "bad request", WithAdvice(advice), WithError(err))
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusConflict, message, options...)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusInternalServerError, "unexpected error", WithError(err))
}

func Unauthorized(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusUnauthorized, message, WithError(err))
}

func Forbidden(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusForbidden, message, WithError(err))
}

package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierr "github.com/dstackai/dstack/api/types/errors"
	cerr "github.com/dstackai/dstack/cmd/dstack/errors"
)

// MessageFor maps a status code range to the error summary shown for it.
type MessageFor map[StatusCodeRange]string

// unmarshalJsonResponse decodes a JSON response body into v.
//
// For non-2xx responses it returns a CUIError summarized by messageFor
// (falling back to the range name) and detailed with the server's error
// payload.
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	if StatusCodeRangeOf(resp) <= Status2xx {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			message := fmt.Sprintf("unexpected error: %s (status code = %d)", err.Error(), resp.StatusCode)
			return cerr.NewCuiError(message, cerr.WithCause(err))
		}
		return nil
	}
	return errorFromResponse(resp, messageFor)
}

// unmarshalStreamResponse hands the response body over to the caller when
// the status is 2xx; otherwise it consumes the body and returns the error
// the server reported.
func unmarshalStreamResponse(resp *http.Response, messageFor MessageFor) (io.ReadCloser, error) {
	if StatusCodeRangeOf(resp) <= Status2xx {
		return resp.Body, nil
	}
	return nil, errorFromResponse(resp, messageFor)
}

func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor) error {
	rc, err := unmarshalStreamResponse(resp, messageFor)
	if rc != nil {
		io.Copy(io.Discard, rc)
		rc.Close()
	}
	return err
}

// errorFromResponse builds the user-facing error for a non-2xx response.
func errorFromResponse(resp *http.Response, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	message, ok := messageFor[scr]
	if !ok {
		message = scr.String()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cerr.NewCuiError(
			fmt.Sprintf("%s\ncannot read server message: %s", message, err.Error()),
			cerr.WithCause(err),
		)
	}

	detail, err := parseErrorMessage(body)
	if err != nil {
		detail = string(body)
	}
	return cerr.NewCuiError(
		message,
		cerr.WithDetail(func(summary string) (string, error) {
			return summary + "\n" + detail, nil
		}),
	)
}

func jsonUnmarshal[T any](buf []byte) (*T, error) {
	ret := new(T)
	if err := json.Unmarshal(buf, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// parseErrorMessage renders the server's error payload for display.
// It accepts the structured error envelope, a bare {"message": ...}
// object, or falls back to the raw body.
func parseErrorMessage(body []byte) (string, error) {
	if eresp, err := jsonUnmarshal[apierr.ErrorResponse](body); err == nil {
		detail, err := json.MarshalIndent(eresp, "", "    ")
		if err != nil {
			return "", err
		}
		return string(detail), nil
	}

	if msg, err := jsonUnmarshal[struct {
		Message *string `json:"message"`
	}](body); err == nil && msg.Message != nil {
		detail, err := json.MarshalIndent(msg, "", "    ")
		if err != nil {
			return "", err
		}
		return string(detail), nil
	}

	return string(body), nil
}

package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorResponse is the envelope of every error payload the API returns.
type ErrorResponse struct {
	Message ErrorMessage `json:"message"`
}

type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	Cause  error  `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	type raw ErrorMessage
	var f raw
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f.Reason == "" {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	*em = ErrorMessage(f)
	return nil
}

func (e ErrorMessage) String() string {
	msg := e.Reason
	if e.Advice != "" {
		msg += "\n" + e.Advice
	}
	if e.Cause != nil {
		msg += "\n caused by:" + e.Cause.Error()
	}
	return msg
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

package rest

import (
	"fmt"
	"net/http"
)

// StatusCodeRange classifies an HTTP status code by its hundreds digit.
type StatusCodeRange int

const (
	StatusUnknown StatusCodeRange = iota
	Status1xx
	Status2xx
	Status3xx
	Status4xx
	Status5xx
)

var rangeNames = map[StatusCodeRange]string{
	Status1xx: "informational response",
	Status2xx: "success",
	Status3xx: "redirect",
	Status4xx: "client error",
	Status5xx: "server error",
}

func (sc StatusCodeRange) String() string {
	if name, ok := rangeNames[sc]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%d)", sc)
}

func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	hundreds := resp.StatusCode / 100
	if hundreds < 1 || 5 < hundreds {
		return StatusUnknown
	}
	return StatusCodeRange(hundreds)
}

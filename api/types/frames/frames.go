package frames

import (
	"github.com/dstackai/dstack/api/types/internal/utils/cmp"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	"github.com/dstackai/dstack/api/types/params"
)

// Attachment is one payload committed into a frame.
type Attachment struct {
	Index       int            `json:"index"`
	Description string         `json:"description,omitempty"`
	ContentType string         `json:"contentType"`
	Application string         `json:"application,omitempty"`
	Length      int64          `json:"length"`
	Checksum    string         `json:"checksum"`
	Params      []params.Param `json:"params,omitempty"`

	// URL is a short-lived pre-signed link to the payload.
	// Set only in responses of the frame detail API.
	URL string `json:"url,omitempty"`
}

func (a Attachment) Equal(o Attachment) bool {
	return a.Index == o.Index &&
		a.Description == o.Description &&
		a.ContentType == o.ContentType &&
		a.Application == o.Application &&
		a.Length == o.Length &&
		a.Checksum == o.Checksum &&
		cmp.SliceEqualUnordered(a.Params, o.Params)
}

type Summary struct {
	FrameId   string           `json:"frameId"`
	User      string           `json:"user"`
	Stack     string           `json:"stack"`
	Message   string           `json:"message,omitempty"`
	CreatedAt rfctime.RFC3339  `json:"createdAt"`
	ClosedAt  *rfctime.RFC3339 `json:"closedAt,omitempty"`
}

func (s Summary) Equal(o Summary) bool {
	closedAtEq := (s.ClosedAt == nil) == (o.ClosedAt == nil)
	if closedAtEq && s.ClosedAt != nil {
		closedAtEq = s.ClosedAt.Equal(*o.ClosedAt)
	}
	return s.FrameId == o.FrameId &&
		s.User == o.User &&
		s.Stack == o.Stack &&
		s.Message == o.Message &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		closedAtEq
}

type Detail struct {
	Summary
	Attachments []Attachment `json:"attachments"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqualUnordered(d.Attachments, o.Attachments)
}

// NewFrame is the request body opening a new frame on a stack.
type NewFrame struct {
	Message string `json:"message,omitempty"`
}

package db

import (
	"context"
	"time"

	"github.com/dstackai/dstack/pkg/cmp"
)

// Frame is a record in the frame table, the unit of pushing to a stack.
//
// A frame starts open, takes attachments one by one, and gets closed.
// Closed frames are immutable; only closed frames can be the head of
// their stack.
type Frame struct {
	// frame id, a UUID issued at opening.
	FrameId string

	// owner of the stack this frame belongs to.
	UserName string

	// name of the stack this frame belongs to.
	StackName string

	// commit message given at opening. May be empty.
	Message string

	CreatedAt time.Time

	// when the frame was closed. Nil while still open.
	ClosedAt *time.Time

	// attachments in index order. Empty for summaries loaded
	// without attachments.
	Attachments []Attachment
}

func (f Frame) Equal(o Frame) bool {
	if (f.ClosedAt == nil) != (o.ClosedAt == nil) {
		return false
	}
	if f.ClosedAt != nil && !f.ClosedAt.Equal(*o.ClosedAt) {
		return false
	}
	return f.FrameId == o.FrameId &&
		f.UserName == o.UserName &&
		f.StackName == o.StackName &&
		f.Message == o.Message &&
		f.CreatedAt.Equal(o.CreatedAt) &&
		cmp.SliceEqWith(f.Attachments, o.Attachments, Attachment.Equal)
}

// Attachment is a record in the attachment table, a single payload
// within a frame.
type Attachment struct {
	FrameId string

	// position of this attachment within its frame, starting at 0.
	Index int

	// human readable description. May be empty.
	Description string

	// media type of the payload, like "image/svg+xml".
	ContentType string

	// name of the application which produced the payload. May be empty.
	Application string

	// payload size in bytes.
	Length int64

	// hex MD5 checksum of the payload.
	Checksum string

	// key of the payload in the blob store.
	BlobRef string

	Params []Param
}

func (a Attachment) Equal(o Attachment) bool {
	return a.FrameId == o.FrameId &&
		a.Index == o.Index &&
		a.Description == o.Description &&
		a.ContentType == o.ContentType &&
		a.Application == o.Application &&
		a.Length == o.Length &&
		a.Checksum == o.Checksum &&
		a.BlobRef == o.BlobRef &&
		cmp.SliceContentEqWith(a.Params, o.Params, Param.Equal)
}

// AttachmentSpec describes a new attachment to be added to an open frame.
type AttachmentSpec struct {
	Description string
	ContentType string
	Application string
	Length      int64
	Checksum    string
	BlobRef     string
	Params      []Param
}

type FrameInterface interface {
	// New opens a frame on the stack at userName/stackName.
	//
	// The stack record is created when it does not exist yet.
	// New stacks are private.
	//
	// Return
	//
	// - Frame: the opened frame, with no attachments.
	//
	// - error
	New(ctx context.Context, userName string, stackName string, message string) (Frame, error)

	// Get a frame with its attachments.
	//
	// Return
	//
	// - Frame
	//
	// - error: ErrMissing when no such frame exists.
	Get(ctx context.Context, frameId string) (Frame, error)

	// FindByStack lists frames of a stack, newest first.
	//
	// Attachments are not loaded.
	//
	// Return
	//
	// - []Frame
	//
	// - error: ErrMissing when no such stack exists.
	FindByStack(ctx context.Context, userName string, stackName string) ([]Frame, error)

	// AddAttachment appends an attachment to an open frame.
	//
	// The index of the new attachment is the number of attachments
	// already in the frame.
	//
	// Return
	//
	// - Attachment: the stored attachment, with its index assigned.
	//
	// - error: ErrMissing when no such frame exists.
	//   ErrFrameClosed when the frame has been closed already.
	AddAttachment(ctx context.Context, frameId string, spec AttachmentSpec) (Attachment, error)

	// Close seals a frame and moves the head of its stack to it.
	//
	// Return
	//
	// - Frame: the closed frame, with its attachments.
	//
	// - error: ErrMissing when no such frame exists.
	//   ErrFrameClosed when the frame has been closed already.
	//   ErrFrameEmpty when the frame has no attachments.
	Close(ctx context.Context, frameId string) (Frame, error)
}

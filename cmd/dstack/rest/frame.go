package rest

import (
	"context"
	"errors"
	"io"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
)

var ErrFramePushed = errors.New("frame is pushed already")

// Frame accumulates attachments on an open server-side frame and closes
// it in a single Push.
//
// It is a convenience wrapper of Client for callers which commit several
// payloads as one batch.
type Frame struct {
	client  Client
	summary apiframes.Summary
	pushed  bool
}

// CreateFrame opens a frame on the stack at path. The stack is created
// by the server when it does not exist yet.
func CreateFrame(
	ctx context.Context, client Client, path apistacks.Path, message string,
) (*Frame, error) {
	summary, err := client.NewFrame(ctx, path, message)
	if err != nil {
		return nil, err
	}
	return &Frame{client: client, summary: summary}, nil
}

func (f *Frame) Id() string {
	return f.summary.FrameId
}

func (f *Frame) Summary() apiframes.Summary {
	return f.summary
}

// Commit uploads one payload into the frame.
func (f *Frame) Commit(
	ctx context.Context, source io.Reader, size int64, spec AttachmentSource,
) Progress[*apiframes.Attachment] {
	return f.client.PostAttachment(ctx, f.summary.FrameId, source, size, spec)
}

// Push closes the frame, publishing its attachments as the stack head.
// A frame can be pushed only once.
func (f *Frame) Push(ctx context.Context) (apiframes.Detail, error) {
	if f.pushed {
		return apiframes.Detail{}, ErrFramePushed
	}
	detail, err := f.client.CloseFrame(ctx, f.summary.FrameId)
	if err != nil {
		return apiframes.Detail{}, err
	}
	f.pushed = true
	return detail, nil
}

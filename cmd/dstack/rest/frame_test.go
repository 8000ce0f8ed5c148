package rest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/rest/mock"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestFrame(t *testing.T) {
	path := apistacks.Path{User: "john-doe", Name: "sales-report"}
	createdAt := rfctime.RFC3339(try.To(
		time.Parse(time.RFC3339, "2024-04-01T12:00:00+00:00"),
	).OrFatal(t))
	summary := apiframes.Summary{
		FrameId:   "frame-1",
		User:      path.User,
		Stack:     path.Name,
		Message:   "weekly update",
		CreatedAt: createdAt,
	}

	t.Run("it opens a frame, commits attachments and pushes once", func(t *testing.T) {
		ctx := context.Background()
		client := mock.New(t)
		client.Impl.NewFrame = func(context.Context, apistacks.Path, string) (apiframes.Summary, error) {
			return summary, nil
		}
		client.Impl.PostAttachment = func(
			_ context.Context, _ string, source io.Reader, size int64, _ krst.AttachmentSource,
		) krst.Progress[*apiframes.Attachment] {
			io.Copy(io.Discard, source)
			return &mock.MockedProgress{
				EstimatedTotalSize_: size,
				ProgressedSize_:     size,
				Result_:             &apiframes.Attachment{Index: 0},
				ResultOk_:           true,
				Done_:               mock.ClosedChan(),
				Sent_:               mock.ClosedChan(),
			}
		}
		closedAt := createdAt
		client.Impl.CloseFrame = func(context.Context, string) (apiframes.Detail, error) {
			d := apiframes.Detail{Summary: summary}
			d.ClosedAt = &closedAt
			return d, nil
		}

		frame := try.To(krst.CreateFrame(ctx, client, path, "weekly update")).OrFatal(t)
		if frame.Id() != "frame-1" {
			t.Errorf("frame id: got %s, want frame-1", frame.Id())
		}
		if !frame.Summary().Equal(summary) {
			t.Errorf("summary: got %+v, want %+v", frame.Summary(), summary)
		}

		prog := frame.Commit(
			ctx, bytes.NewBufferString("payload"), 7,
			krst.AttachmentSource{ContentType: "text/plain"},
		)
		<-prog.Done()
		if err := prog.Error(); err != nil {
			t.Fatal(err)
		}

		detail := try.To(frame.Push(ctx)).OrFatal(t)
		if detail.ClosedAt == nil {
			t.Error("pushed frame should be closed")
		}

		if want := []mock.NewFrameArgs{{Path: path, Message: "weekly update"}}; len(client.Calls.NewFrame) != 1 || client.Calls.NewFrame[0] != want[0] {
			t.Errorf("NewFrame calls: got %+v, want %+v", client.Calls.NewFrame, want)
		}
		if len(client.Calls.PostAttachment) != 1 || client.Calls.PostAttachment[0].FrameId != "frame-1" {
			t.Errorf("PostAttachment calls: got %+v", client.Calls.PostAttachment)
		}
		if len(client.Calls.CloseFrame) != 1 || client.Calls.CloseFrame[0] != "frame-1" {
			t.Errorf("CloseFrame calls: got %+v", client.Calls.CloseFrame)
		}

		if _, err := frame.Push(ctx); !errors.Is(err, krst.ErrFramePushed) {
			t.Errorf("second push: got %+v, want ErrFramePushed", err)
		}
		if len(client.Calls.CloseFrame) != 1 {
			t.Errorf("second push should not reach the server: %+v", client.Calls.CloseFrame)
		}
	})

	t.Run("it does not mark the frame pushed when closing fails", func(t *testing.T) {
		ctx := context.Background()
		expectedErr := errors.New("fake error")
		client := mock.New(t)
		client.Impl.NewFrame = func(context.Context, apistacks.Path, string) (apiframes.Summary, error) {
			return summary, nil
		}
		client.Impl.CloseFrame = func(context.Context, string) (apiframes.Detail, error) {
			return apiframes.Detail{}, expectedErr
		}

		frame := try.To(krst.CreateFrame(ctx, client, path, "")).OrFatal(t)
		if _, err := frame.Push(ctx); !errors.Is(err, expectedErr) {
			t.Errorf("push: got %+v, want %+v", err, expectedErr)
		}
		if _, err := frame.Push(ctx); !errors.Is(err, expectedErr) {
			t.Errorf("retried push: got %+v, want %+v", err, expectedErr)
		}
		if len(client.Calls.CloseFrame) != 2 {
			t.Errorf("push should be retriable after an error: %+v", client.Calls.CloseFrame)
		}
	})

	t.Run("it propagates an error on opening a frame", func(t *testing.T) {
		ctx := context.Background()
		expectedErr := errors.New("fake error")
		client := mock.New(t)
		client.Impl.NewFrame = func(context.Context, apistacks.Path, string) (apiframes.Summary, error) {
			return apiframes.Summary{}, expectedErr
		}

		if _, err := krst.CreateFrame(ctx, client, path, ""); !errors.Is(err, expectedErr) {
			t.Errorf("got %+v, want %+v", err, expectedErr)
		}
	})
}

package push_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	kprof "github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/rest/mock"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/internal/commandline"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/logger"
	subpush "github.com/dstackai/dstack/cmd/dstack/subcommands/push"
	"github.com/dstackai/dstack/pkg/cmp"
	kargs "github.com/dstackai/dstack/pkg/utils/args"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestPushCommand(t *testing.T) {
	createdAt := rfctime.RFC3339(try.To(
		time.Parse(time.RFC3339, "2024-04-01T12:00:00+00:00"),
	).OrFatal(t))

	newFile := func(t *testing.T, name string, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(content), os.FileMode(0644)); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("it opens a frame, uploads each file and closes the frame", func(t *testing.T) {
		sourceA := newFile(t, "chart_de.svg", "payload A")
		sourceB := newFile(t, "chart_us.svg", "payload B")

		client := mock.New(t)
		client.Impl.NewFrame = func(
			ctx context.Context, path apistacks.Path, message string,
		) (apiframes.Summary, error) {
			return apiframes.Summary{
				FrameId: "frame-1", User: path.User, Stack: path.Name,
				Message: message, CreatedAt: createdAt,
			}, nil
		}

		uploaded := map[string]string{}
		client.Impl.PostAttachment = func(
			ctx context.Context, frameId string, source io.Reader, size int64, spec krst.AttachmentSource,
		) krst.Progress[*apiframes.Attachment] {
			content := string(try.To(io.ReadAll(source)).OrFatal(t))
			uploaded[content] = spec.ContentType
			return &mock.MockedProgress{
				EstimatedTotalSize_: size,
				ProgressedSize_:     size,
				Result_:             &apiframes.Attachment{Index: len(uploaded) - 1},
				ResultOk_:           true,
				Done_:               mock.ClosedChan(),
				Sent_:               mock.ClosedChan(),
			}
		}
		client.Impl.CloseFrame = func(ctx context.Context, frameId string) (apiframes.Detail, error) {
			return apiframes.Detail{
				Summary: apiframes.Summary{
					FrameId: frameId, User: "alice", Stack: "sine-curve",
					CreatedAt: createdAt, ClosedAt: &createdAt,
				},
			}, nil
		}

		testee := subpush.Task()
		err := testee(
			context.Background(),
			logger.Null(),
			kprof.Profile{User: "alice", Token: "token"},
			client,
			commandline.MockCommandline[subpush.Flags]{
				Fullname_: "dstack push",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_: subpush.Flags{
					Message: "new charts",
					Param:   &kargs.Params{{Key: "country", Value: "DE"}},
				},
				Args_: map[string][]string{
					subpush.ARG_STACK:  {"sine-curve"},
					subpush.ARG_SOURCE: {sourceA, sourceB},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if len(client.Calls.NewFrame) != 1 {
			t.Fatalf("unexpected NewFrame calls: %+v", client.Calls.NewFrame)
		}
		newFrame := client.Calls.NewFrame[0]
		if newFrame.Path != (apistacks.Path{User: "alice", Name: "sine-curve"}) {
			t.Errorf("unexpected path: %+v", newFrame.Path)
		}
		if newFrame.Message != "new charts" {
			t.Errorf("unexpected message: %s", newFrame.Message)
		}

		if len(client.Calls.PostAttachment) != 2 {
			t.Fatalf("unexpected PostAttachment calls: %+v", client.Calls.PostAttachment)
		}
		for _, call := range client.Calls.PostAttachment {
			if call.FrameId != "frame-1" {
				t.Errorf("unexpected frameId: %s", call.FrameId)
			}
			if !cmp.SliceEqWith(
				call.Spec.Params,
				[]apiparams.Param{{Key: "country", Value: "DE"}},
				apiparams.Param.Equal,
			) {
				t.Errorf("unexpected params: %+v", call.Spec.Params)
			}
		}
		if _, ok := uploaded["payload A"]; !ok {
			t.Error("payload A is not uploaded")
		}
		if _, ok := uploaded["payload B"]; !ok {
			t.Error("payload B is not uploaded")
		}

		if len(client.Calls.CloseFrame) != 1 || client.Calls.CloseFrame[0] != "frame-1" {
			t.Errorf("unexpected CloseFrame calls: %+v", client.Calls.CloseFrame)
		}
	})

	t.Run("when a source file is missing, it fails before opening a frame", func(t *testing.T) {
		client := mock.New(t)

		testee := subpush.Task()
		err := testee(
			context.Background(),
			logger.Null(),
			kprof.Profile{User: "alice", Token: "token"},
			client,
			commandline.MockCommandline[subpush.Flags]{
				Fullname_: "dstack push",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    subpush.Flags{Param: &kargs.Params{}},
				Args_: map[string][]string{
					subpush.ARG_STACK:  {"sine-curve"},
					subpush.ARG_SOURCE: {"/no/such/file"},
				},
			},
			[]any{},
		)
		if err == nil {
			t.Error("error is expected, but not")
		}
		if len(client.Calls.NewFrame) != 0 {
			t.Errorf("NewFrame should not be called: %+v", client.Calls.NewFrame)
		}
	})

	t.Run("when the upload fails, the error is returned and the frame stays open", func(t *testing.T) {
		source := newFile(t, "chart.svg", "payload")

		expectedError := errors.New("fake error")
		client := mock.New(t)
		client.Impl.NewFrame = func(
			ctx context.Context, path apistacks.Path, message string,
		) (apiframes.Summary, error) {
			return apiframes.Summary{FrameId: "frame-1", CreatedAt: createdAt}, nil
		}
		client.Impl.PostAttachment = func(
			ctx context.Context, frameId string, source io.Reader, size int64, spec krst.AttachmentSource,
		) krst.Progress[*apiframes.Attachment] {
			io.Copy(io.Discard, source)
			return &mock.MockedProgress{
				Error_: expectedError,
				Done_:  mock.ClosedChan(),
				Sent_:  mock.ClosedChan(),
			}
		}

		testee := subpush.Task()
		err := testee(
			context.Background(),
			logger.Null(),
			kprof.Profile{User: "alice", Token: "token"},
			client,
			commandline.MockCommandline[subpush.Flags]{
				Fullname_: "dstack push",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    subpush.Flags{Param: &kargs.Params{}},
				Args_: map[string][]string{
					subpush.ARG_STACK:  {"sine-curve"},
					subpush.ARG_SOURCE: {source},
				},
			},
			[]any{},
		)
		if !errors.Is(err, expectedError) {
			t.Errorf("wrong error: %+v", err)
		}
		if len(client.Calls.CloseFrame) != 0 {
			t.Errorf("CloseFrame should not be called: %+v", client.Calls.CloseFrame)
		}
	})
}

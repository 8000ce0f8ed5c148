package mock

import (
	"context"
	"io"
	"testing"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	apiusers "github.com/dstackai/dstack/api/types/users"
	"github.com/dstackai/dstack/cmd/dstack/rest"
)

type FindStacksArgs struct {
	Owner  string
	Params []apiparams.Param
}

type SetStackAccessArgs struct {
	Path    apistacks.Path
	Private bool
}

type NewFrameArgs struct {
	Path    apistacks.Path
	Message string
}

type PostAttachmentArgs struct {
	FrameId string
	Size    int64
	Spec    rest.AttachmentSource
}

type GetAttachmentArgs struct {
	FrameId string
	Index   int
}

func New(t *testing.T) *mockClient {
	return &mockClient{t: t}
}

type MockedProgress struct {
	EstimatedTotalSize_ int64

	ProgressedSize_ int64

	Error_ error

	Result_ *apiframes.Attachment

	ResultOk_ bool

	Done_ <-chan struct{}

	Sent_ <-chan struct{}
}

func (m *MockedProgress) EstimatedTotalSize() int64 {
	return m.EstimatedTotalSize_
}

func (m *MockedProgress) ProgressedSize() int64 {
	return m.ProgressedSize_
}

func (m *MockedProgress) Result() (*apiframes.Attachment, bool) {
	return m.Result_, m.ResultOk_
}

func (m *MockedProgress) Error() error {
	return m.Error_
}

func (m *MockedProgress) Done() <-chan struct{} {
	return m.Done_
}

func (m *MockedProgress) Sent() <-chan struct{} {
	return m.Sent_
}

// ClosedChan returns a closed channel, for mocked progress which is
// over from the start.
func ClosedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type mockClient struct {
	t    *testing.T
	Impl struct {
		Whoami         func(ctx context.Context) (apiusers.Detail, error)
		FindStacks     func(ctx context.Context, owner string, params []apiparams.Param) ([]apistacks.Summary, error)
		GetStack       func(ctx context.Context, path apistacks.Path) (apistacks.Detail, error)
		DeleteStack    func(ctx context.Context, path apistacks.Path) error
		SetStackAccess func(ctx context.Context, path apistacks.Path, private bool) (apistacks.Summary, error)
		NewFrame       func(ctx context.Context, path apistacks.Path, message string) (apiframes.Summary, error)
		GetFrame       func(ctx context.Context, frameId string) (apiframes.Detail, error)
		CloseFrame     func(ctx context.Context, frameId string) (apiframes.Detail, error)
		PostAttachment func(ctx context.Context, frameId string, source io.Reader, size int64, spec rest.AttachmentSource) rest.Progress[*apiframes.Attachment]
		GetAttachment  func(ctx context.Context, frameId string, index int, handler func(io.Reader) error) error
	}
	Calls struct {
		Whoami         int
		FindStacks     []FindStacksArgs
		GetStack       []apistacks.Path
		DeleteStack    []apistacks.Path
		SetStackAccess []SetStackAccessArgs
		NewFrame       []NewFrameArgs
		GetFrame       []string
		CloseFrame     []string
		PostAttachment []PostAttachmentArgs
		GetAttachment  []GetAttachmentArgs
	}
}

var _ rest.Client = &mockClient{}

func (m *mockClient) Whoami(ctx context.Context) (apiusers.Detail, error) {
	m.t.Helper()

	m.Calls.Whoami += 1
	if m.Impl.Whoami == nil {
		m.t.Fatal("Whoami is not ready to be called")
	}
	return m.Impl.Whoami(ctx)
}

func (m *mockClient) FindStacks(ctx context.Context, owner string, params []apiparams.Param) ([]apistacks.Summary, error) {
	m.t.Helper()

	m.Calls.FindStacks = append(m.Calls.FindStacks, FindStacksArgs{Owner: owner, Params: params})
	if m.Impl.FindStacks == nil {
		m.t.Fatal("FindStacks is not ready to be called")
	}
	return m.Impl.FindStacks(ctx, owner, params)
}

func (m *mockClient) GetStack(ctx context.Context, path apistacks.Path) (apistacks.Detail, error) {
	m.t.Helper()

	m.Calls.GetStack = append(m.Calls.GetStack, path)
	if m.Impl.GetStack == nil {
		m.t.Fatal("GetStack is not ready to be called")
	}
	return m.Impl.GetStack(ctx, path)
}

func (m *mockClient) DeleteStack(ctx context.Context, path apistacks.Path) error {
	m.t.Helper()

	m.Calls.DeleteStack = append(m.Calls.DeleteStack, path)
	if m.Impl.DeleteStack == nil {
		m.t.Fatal("DeleteStack is not ready to be called")
	}
	return m.Impl.DeleteStack(ctx, path)
}

func (m *mockClient) SetStackAccess(ctx context.Context, path apistacks.Path, private bool) (apistacks.Summary, error) {
	m.t.Helper()

	m.Calls.SetStackAccess = append(m.Calls.SetStackAccess, SetStackAccessArgs{Path: path, Private: private})
	if m.Impl.SetStackAccess == nil {
		m.t.Fatal("SetStackAccess is not ready to be called")
	}
	return m.Impl.SetStackAccess(ctx, path, private)
}

func (m *mockClient) NewFrame(ctx context.Context, path apistacks.Path, message string) (apiframes.Summary, error) {
	m.t.Helper()

	m.Calls.NewFrame = append(m.Calls.NewFrame, NewFrameArgs{Path: path, Message: message})
	if m.Impl.NewFrame == nil {
		m.t.Fatal("NewFrame is not ready to be called")
	}
	return m.Impl.NewFrame(ctx, path, message)
}

func (m *mockClient) GetFrame(ctx context.Context, frameId string) (apiframes.Detail, error) {
	m.t.Helper()

	m.Calls.GetFrame = append(m.Calls.GetFrame, frameId)
	if m.Impl.GetFrame == nil {
		m.t.Fatal("GetFrame is not ready to be called")
	}
	return m.Impl.GetFrame(ctx, frameId)
}

func (m *mockClient) CloseFrame(ctx context.Context, frameId string) (apiframes.Detail, error) {
	m.t.Helper()

	m.Calls.CloseFrame = append(m.Calls.CloseFrame, frameId)
	if m.Impl.CloseFrame == nil {
		m.t.Fatal("CloseFrame is not ready to be called")
	}
	return m.Impl.CloseFrame(ctx, frameId)
}

func (m *mockClient) PostAttachment(
	ctx context.Context, frameId string, source io.Reader, size int64, spec rest.AttachmentSource,
) rest.Progress[*apiframes.Attachment] {
	m.t.Helper()

	m.Calls.PostAttachment = append(m.Calls.PostAttachment, PostAttachmentArgs{
		FrameId: frameId, Size: size, Spec: spec,
	})
	if m.Impl.PostAttachment == nil {
		m.t.Fatal("PostAttachment is not ready to be called")
	}
	return m.Impl.PostAttachment(ctx, frameId, source, size, spec)
}

func (m *mockClient) GetAttachment(
	ctx context.Context, frameId string, index int, handler func(io.Reader) error,
) error {
	m.t.Helper()

	m.Calls.GetAttachment = append(m.Calls.GetAttachment, GetAttachmentArgs{FrameId: frameId, Index: index})
	if m.Impl.GetAttachment == nil {
		m.t.Fatal("GetAttachment is not ready to be called")
	}
	return m.Impl.GetAttachment(ctx, frameId, index, handler)
}

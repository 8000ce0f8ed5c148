package mocks

import (
	"context"
	"errors"

	ddb "github.com/dstackai/dstack/pkg/db"
)

type FrameInterface struct {
	Impl struct {
		New           func(context.Context, string, string, string) (ddb.Frame, error)
		Get           func(context.Context, string) (ddb.Frame, error)
		FindByStack   func(context.Context, string, string) ([]ddb.Frame, error)
		AddAttachment func(context.Context, string, ddb.AttachmentSpec) (ddb.Attachment, error)
		Close         func(context.Context, string) (ddb.Frame, error)
	}
	Calls struct {
		New CallLog[struct {
			UserName  string
			StackName string
			Message   string
		}]
		Get         CallLog[struct{ FrameId string }]
		FindByStack CallLog[struct {
			UserName  string
			StackName string
		}]
		AddAttachment CallLog[struct {
			FrameId string
			Spec    ddb.AttachmentSpec
		}]
		Close CallLog[struct{ FrameId string }]
	}
}

func NewFrameInterface() *FrameInterface {
	return &FrameInterface{}
}

var _ ddb.FrameInterface = &FrameInterface{}

func (m *FrameInterface) New(ctx context.Context, userName string, stackName string, message string) (ddb.Frame, error) {
	m.Calls.New = append(m.Calls.New, struct {
		UserName  string
		StackName string
		Message   string
	}{UserName: userName, StackName: stackName, Message: message})
	if m.Impl.New != nil {
		return m.Impl.New(ctx, userName, stackName, message)
	}
	panic(errors.New("it should not be called"))
}

func (m *FrameInterface) Get(ctx context.Context, frameId string) (ddb.Frame, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ FrameId string }{FrameId: frameId})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, frameId)
	}
	panic(errors.New("it should not be called"))
}

func (m *FrameInterface) FindByStack(ctx context.Context, userName string, stackName string) ([]ddb.Frame, error) {
	m.Calls.FindByStack = append(m.Calls.FindByStack, struct {
		UserName  string
		StackName string
	}{UserName: userName, StackName: stackName})
	if m.Impl.FindByStack != nil {
		return m.Impl.FindByStack(ctx, userName, stackName)
	}
	panic(errors.New("it should not be called"))
}

func (m *FrameInterface) AddAttachment(ctx context.Context, frameId string, spec ddb.AttachmentSpec) (ddb.Attachment, error) {
	m.Calls.AddAttachment = append(m.Calls.AddAttachment, struct {
		FrameId string
		Spec    ddb.AttachmentSpec
	}{FrameId: frameId, Spec: spec})
	if m.Impl.AddAttachment != nil {
		return m.Impl.AddAttachment(ctx, frameId, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *FrameInterface) Close(ctx context.Context, frameId string) (ddb.Frame, error) {
	m.Calls.Close = append(m.Calls.Close, struct{ FrameId string }{FrameId: frameId})
	if m.Impl.Close != nil {
		return m.Impl.Close(ctx, frameId)
	}
	panic(errors.New("it should not be called"))
}

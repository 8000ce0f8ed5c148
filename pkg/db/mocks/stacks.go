package mocks

import (
	"context"
	"errors"

	ddb "github.com/dstackai/dstack/pkg/db"
)

type StackInterface struct {
	Impl struct {
		Find         func(context.Context, ddb.StackFindArgs) ([]ddb.Stack, error)
		Get          func(context.Context, string, string) (ddb.Stack, error)
		UpdateAccess func(context.Context, string, string, bool) error
		Delete       func(context.Context, string, string) error
	}
	Calls struct {
		Find CallLog[ddb.StackFindArgs]
		Get  CallLog[struct {
			UserName string
			Name     string
		}]
		UpdateAccess CallLog[struct {
			UserName string
			Name     string
			Private  bool
		}]
		Delete CallLog[struct {
			UserName string
			Name     string
		}]
	}
}

func NewStackInterface() *StackInterface {
	return &StackInterface{}
}

var _ ddb.StackInterface = &StackInterface{}

func (m *StackInterface) Find(ctx context.Context, args ddb.StackFindArgs) ([]ddb.Stack, error) {
	m.Calls.Find = append(m.Calls.Find, args)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, args)
	}
	panic(errors.New("it should not be called"))
}

func (m *StackInterface) Get(ctx context.Context, userName string, name string) (ddb.Stack, error) {
	m.Calls.Get = append(m.Calls.Get, struct {
		UserName string
		Name     string
	}{UserName: userName, Name: name})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, userName, name)
	}
	panic(errors.New("it should not be called"))
}

func (m *StackInterface) UpdateAccess(ctx context.Context, userName string, name string, private bool) error {
	m.Calls.UpdateAccess = append(m.Calls.UpdateAccess, struct {
		UserName string
		Name     string
		Private  bool
	}{UserName: userName, Name: name, Private: private})
	if m.Impl.UpdateAccess != nil {
		return m.Impl.UpdateAccess(ctx, userName, name, private)
	}
	panic(errors.New("it should not be called"))
}

func (m *StackInterface) Delete(ctx context.Context, userName string, name string) error {
	m.Calls.Delete = append(m.Calls.Delete, struct {
		UserName string
		Name     string
	}{UserName: userName, Name: name})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, userName, name)
	}
	panic(errors.New("it should not be called"))
}

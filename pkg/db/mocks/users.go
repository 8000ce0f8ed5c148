package mocks

import (
	"context"
	"errors"

	ddb "github.com/dstackai/dstack/pkg/db"
)

type UserInterface struct {
	Impl struct {
		GetByToken func(context.Context, string) (ddb.User, error)
		Get        func(context.Context, string) (ddb.User, error)
		Ensure     func(context.Context, string, string) (ddb.User, bool, error)
	}
	Calls struct {
		GetByToken CallLog[struct{ Token string }]
		Get        CallLog[struct{ Name string }]
		Ensure     CallLog[struct {
			Name  string
			Token string
		}]
	}
}

func NewUserInterface() *UserInterface {
	return &UserInterface{}
}

var _ ddb.UserInterface = &UserInterface{}

func (m *UserInterface) GetByToken(ctx context.Context, token string) (ddb.User, error) {
	m.Calls.GetByToken = append(m.Calls.GetByToken, struct{ Token string }{Token: token})
	if m.Impl.GetByToken != nil {
		return m.Impl.GetByToken(ctx, token)
	}
	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Get(ctx context.Context, name string) (ddb.User, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ Name string }{Name: name})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, name)
	}
	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Ensure(ctx context.Context, name string, token string) (ddb.User, bool, error) {
	m.Calls.Ensure = append(m.Calls.Ensure, struct {
		Name  string
		Token string
	}{Name: name, Token: token})
	if m.Impl.Ensure != nil {
		return m.Impl.Ensure(ctx, name, token)
	}
	panic(errors.New("it should not be called"))
}

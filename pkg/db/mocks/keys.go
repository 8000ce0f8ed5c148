package mocks

import (
	"context"
	"errors"
	"time"

	ddb "github.com/dstackai/dstack/pkg/db"
)

type KeyInterface struct {
	Impl struct {
		Provide func(context.Context, time.Duration) (ddb.SignKey, error)
		Get     func(context.Context, string) (ddb.SignKey, error)
	}
	Calls struct {
		Provide CallLog[struct{ Margin time.Duration }]
		Get     CallLog[struct{ KID string }]
	}
}

func NewKeyInterface() *KeyInterface {
	return &KeyInterface{}
}

var _ ddb.KeyInterface = &KeyInterface{}

func (m *KeyInterface) Provide(ctx context.Context, margin time.Duration) (ddb.SignKey, error) {
	m.Calls.Provide = append(m.Calls.Provide, struct{ Margin time.Duration }{Margin: margin})
	if m.Impl.Provide != nil {
		return m.Impl.Provide(ctx, margin)
	}
	panic(errors.New("it should not be called"))
}

func (m *KeyInterface) Get(ctx context.Context, kid string) (ddb.SignKey, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ KID string }{KID: kid})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, kid)
	}
	panic(errors.New("it should not be called"))
}

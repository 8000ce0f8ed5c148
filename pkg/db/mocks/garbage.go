package mocks

import (
	"context"
	"errors"

	ddb "github.com/dstackai/dstack/pkg/db"
)

type GarbageInterface struct {
	Impl struct {
		Pop func(context.Context, func(ddb.Garbage) error) (bool, error)
	}
	Calls struct {
		Pop CallLog[struct{}]
	}
}

func NewGarbageInterface() *GarbageInterface {
	return &GarbageInterface{}
}

var _ ddb.GarbageInterface = &GarbageInterface{}

func (m *GarbageInterface) Pop(ctx context.Context, callback func(ddb.Garbage) error) (bool, error) {
	m.Calls.Pop = append(m.Calls.Pop, struct{}{})
	if m.Impl.Pop != nil {
		return m.Impl.Pop(ctx, callback)
	}
	panic(errors.New("it should not be called"))
}

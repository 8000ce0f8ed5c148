package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/dstackai/dstack/pkg/storage"
)

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

type Store struct {
	Impl struct {
		Put    func(context.Context, string, io.Reader) (int64, error)
		Get    func(context.Context, string) (io.ReadCloser, int64, error)
		Remove func(context.Context, string) error
	}
	Calls struct {
		Put    CallLog[struct{ Ref string }]
		Get    CallLog[struct{ Ref string }]
		Remove CallLog[struct{ Ref string }]
	}
}

func NewStore() *Store {
	return &Store{}
}

var _ storage.Store = &Store{}

func (m *Store) Put(ctx context.Context, ref string, r io.Reader) (int64, error) {
	m.Calls.Put = append(m.Calls.Put, struct{ Ref string }{Ref: ref})
	if m.Impl.Put != nil {
		return m.Impl.Put(ctx, ref, r)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Get(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ Ref string }{Ref: ref})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, ref)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Remove(ctx context.Context, ref string) error {
	m.Calls.Remove = append(m.Calls.Remove, struct{ Ref string }{Ref: ref})
	if m.Impl.Remove != nil {
		return m.Impl.Remove(ctx, ref)
	}
	panic(errors.New("it should not be called"))
}

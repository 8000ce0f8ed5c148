package mocks

import (
	ddb "github.com/dstackai/dstack/pkg/db"
)

type StackDatabase struct {
	StacksImpl  *StackInterface
	FramesImpl  *FrameInterface
	UsersImpl   *UserInterface
	KeysImpl    *KeyInterface
	GarbageImpl *GarbageInterface
}

func NewStackDatabase() *StackDatabase {
	return &StackDatabase{
		StacksImpl:  NewStackInterface(),
		FramesImpl:  NewFrameInterface(),
		UsersImpl:   NewUserInterface(),
		KeysImpl:    NewKeyInterface(),
		GarbageImpl: NewGarbageInterface(),
	}
}

var _ ddb.StackDatabase = &StackDatabase{}

func (m *StackDatabase) Stacks() ddb.StackInterface    { return m.StacksImpl }
func (m *StackDatabase) Frames() ddb.FrameInterface    { return m.FramesImpl }
func (m *StackDatabase) Users() ddb.UserInterface      { return m.UsersImpl }
func (m *StackDatabase) Keys() ddb.KeyInterface        { return m.KeysImpl }
func (m *StackDatabase) Garbage() ddb.GarbageInterface { return m.GarbageImpl }
func (m *StackDatabase) Close() error                  { return nil }

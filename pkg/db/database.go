package db

type StackDatabase interface {
	Stacks() StackInterface
	Frames() FrameInterface
	Users() UserInterface
	Keys() KeyInterface
	Garbage() GarbageInterface
	Close() error
}

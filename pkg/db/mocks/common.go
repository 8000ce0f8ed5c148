package mocks

// CallLog records the arguments of each call to a mocked method.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

func (l CallLog[T]) Empty() bool {
	return len(l) == 0
}

package io

import (
	"io"
	"sync"
)

// TriggerReader is a reader which fires callbacks when the stream ends.
type TriggerReader interface {
	io.Reader

	// OnEnd registers a callback fired once when the stream hits EOF.
	//
	// If the stream is exhausted already, the callback is fired
	// immediately.
	OnEnd(func())
}

type triggerReader struct {
	base      io.Reader
	onEnd     []func()
	exhausted bool
	mux       sync.Mutex
}

func NewTriggerReader(base io.Reader) TriggerReader {
	return &triggerReader{base: base}
}

func (t *triggerReader) Read(p []byte) (int, error) {
	n, err := t.base.Read(p)
	if err == io.EOF {
		t.fire()
	}
	return n, err
}

func (t *triggerReader) fire() {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.exhausted {
		return
	}
	t.exhausted = true
	for _, f := range t.onEnd {
		f()
	}
	t.onEnd = nil
}

func (t *triggerReader) OnEnd(callback func()) {
	t.mux.Lock()
	if t.exhausted {
		t.mux.Unlock()
		callback()
		return
	}
	defer t.mux.Unlock()
	t.onEnd = append(t.onEnd, callback)
}

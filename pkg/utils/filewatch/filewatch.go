package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext derives a context that is canceled as soon as any of
// the given files changes on disk (written, created, removed or renamed).
//
// The returned cancel function releases the watcher; call it even when the
// context is never canceled by a file event. On error both returned values
// are nil.
func UntilModifyContext(ctx context.Context, files ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}
	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			watcher.Close()
			cancel(err)
			return nil, nil, err
		}
	}

	go func() {
		defer watcher.Close()
		select {
		case <-cctx.Done():
		case ev, ok := <-watcher.Events:
			if ok {
				cancel(fmt.Errorf("%s is updated (%s)", ev.Name, ev.Op))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}

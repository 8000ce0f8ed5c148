package fs_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dstackai/dstack/pkg/storage"
	"github.com/dstackai/dstack/pkg/storage/fs"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestStore_PutAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("it reads back what it stored", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		payload := []byte("quick brown fox")
		written := try.To(
			testee.Put(ctx, "0123abcd", bytes.NewReader(payload)),
		).OrFatal(t)
		if written != int64(len(payload)) {
			t.Errorf("unexpected written size: (actual, expected) = (%d, %d)", written, len(payload))
		}

		r, size, err := testee.Get(ctx, "0123abcd")
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if size != int64(len(payload)) {
			t.Errorf("unexpected size: (actual, expected) = (%d, %d)", size, len(payload))
		}
		actual := try.To(io.ReadAll(r)).OrFatal(t)
		if !bytes.Equal(actual, payload) {
			t.Errorf("unexpected content: (actual, expected) = (%s, %s)", actual, payload)
		}
	})

	t.Run("it does not overwrite a stored blob", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		if _, err := testee.Put(ctx, "aabbcc", strings.NewReader("first")); err != nil {
			t.Fatal(err)
		}
		if _, err := testee.Put(ctx, "aabbcc", strings.NewReader("second")); !errors.Is(err, storage.ErrExist) {
			t.Errorf("unexpected error: %+v", err)
		}

		r, _, err := testee.Get(ctx, "aabbcc")
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if actual := string(try.To(io.ReadAll(r)).OrFatal(t)); actual != "first" {
			t.Errorf("stored blob has been changed: %s", actual)
		}
	})

	t.Run("it rejects refs escaping the root", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		for _, ref := range []string{"", "../escape", "a/b", `a\b`} {
			if _, err := testee.Put(ctx, ref, strings.NewReader("x")); err == nil {
				t.Errorf("Put accepts bad ref: %q", ref)
			}
			if _, _, err := testee.Get(ctx, ref); err == nil {
				t.Errorf("Get accepts bad ref: %q", ref)
			}
		}
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("it returns ErrNotExist for unknown ref", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		if _, _, err := testee.Get(context.Background(), "feedface"); !errors.Is(err, storage.ErrNotExist) {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removed blobs are gone", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		if _, err := testee.Put(ctx, "deadbeef", strings.NewReader("payload")); err != nil {
			t.Fatal(err)
		}
		if err := testee.Remove(ctx, "deadbeef"); err != nil {
			t.Fatal(err)
		}
		if _, _, err := testee.Get(ctx, "deadbeef"); !errors.Is(err, storage.ErrNotExist) {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("removing an unknown ref is not an error", func(t *testing.T) {
		testee := try.To(fs.New(t.TempDir())).OrFatal(t)

		if err := testee.Remove(ctx, "cafebabe"); err != nil {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}

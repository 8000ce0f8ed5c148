package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dstackai/dstack/pkg/storage"
)

type fsStore struct {
	root string
}

// New creates a Store laying blobs out under root.
//
// A blob with ref "deadbeef..." is stored at "<root>/de/deadbeef...".
// Writes go to a temporary file first and are renamed into place,
// so readers never observe a partial blob.
func New(root string) (storage.Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &fsStore{root: root}, nil
}

var _ storage.Store = &fsStore{}

func (s *fsStore) path(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, "/\\") || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: bad ref %q", storage.ErrNotExist, ref)
	}
	shard := ref
	if 2 < len(shard) {
		shard = shard[:2]
	}
	return filepath.Join(s.root, shard, ref), nil
}

func (s *fsStore) Put(ctx context.Context, ref string, r io.Reader) (int64, error) {
	dest, err := s.path(ref)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(dest); err == nil {
		return 0, fmt.Errorf("%w: %s", storage.ErrExist, ref)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+ref+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := copyCtx(ctx, tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	return written, nil
}

func (s *fsStore) Get(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	dest, err := s.path(ref)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", storage.ErrNotExist, ref)
		}
		return nil, 0, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, stat.Size(), nil
}

func (s *fsStore) Remove(ctx context.Context, ref string) error {
	dest, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// copyCtx copies like io.Copy, but stops between chunks when ctx is done.
func copyCtx(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := r.Read(buf)
		if 0 < n {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

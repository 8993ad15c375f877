package kvstore

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// File keeps one file per key under a directory. Writes go to a temp file
// and are renamed into place, so a reader never sees a half-written value.
type File struct {
	mu        sync.Mutex
	dir       string
	namespace string
}

var _ Store = (*File)(nil)

func OpenFile(dir, namespace string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "kvstore: create dir %q", dir)
	}
	return &File{dir: dir, namespace: namespace}, nil
}

// path hex-encodes the key so any key maps to a valid file name.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key))+".json")
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "kvstore: read %q", key)
	}
	return string(b), nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return errors.Wrapf(err, "kvstore: write %q", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "kvstore: write %q", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "kvstore: write %q", key)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return errors.Wrapf(err, "kvstore: write %q", key)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "kvstore: delete %q", key)
	}
	return nil
}

func (f *File) GenerateKey(operation, key string) string {
	return generateKey(f.namespace, operation, key)
}

func (f *File) Close() error { return nil }

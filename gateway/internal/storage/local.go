package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrTooLarge = errors.New("file exceeds the upload limit")
	ErrNotFound = errors.New("stored file not found")
)

// Local keeps uploaded files in one directory under generated names.
type Local struct {
	dir     string
	maxSize int64
}

func NewLocal(dir string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxSize: maxSize}, nil
}

func (s *Local) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save writes r under name and returns the number of bytes stored.
func (s *Local) Save(name string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(s.path(name))
		return 0, err
	}
	return n, nil
}

func (s *Local) Open(name string) (*os.File, error) {
	f, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Remove deletes name; a file that is already gone is not an error.
func (s *Local) Remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

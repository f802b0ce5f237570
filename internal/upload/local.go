package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps resumes in a directory on disk.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, resumeObjectPrefix), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

// Save implements ResumeStore.
func (s *LocalStore) Save(_ context.Context, objectName, _ string, data io.Reader) (string, error) {
	if !ValidObjectName(objectName) {
		return "", ErrInvalidObjectName
	}

	path := filepath.Join(s.Dir, filepath.FromSlash(objectName))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return PublicPath(objectName), nil
}

// Open implements ResumeStore.
func (s *LocalStore) Open(_ context.Context, objectName string) (io.ReadCloser, int64, error) {
	if !ValidObjectName(objectName) {
		return nil, 0, ErrInvalidObjectName
	}

	f, err := os.Open(filepath.Join(s.Dir, filepath.FromSlash(objectName)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

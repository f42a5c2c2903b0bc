package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// DiskStorage keeps uploaded files in a single directory under generated
// names. Paths handed out are relative to the root.
type DiskStorage struct {
	root string
}

// NewDiskStorage creates root if needed.
func NewDiskStorage(root string) (*DiskStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{root: abs}, nil
}

// Save writes content under a fresh uuid name that keeps the original
// extension.
func (s *DiskStorage) Save(_ context.Context, originalName string, content io.Reader) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	return name, n, nil
}

// Open returns domain.ErrFileMissing when path does not exist or escapes the
// root.
func (s *DiskStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, ok := s.resolve(path)
	if !ok {
		return nil, domain.ErrFileMissing
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileMissing
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *DiskStorage) Remove(_ context.Context, path string) error {
	full, ok := s.resolve(path)
	if !ok {
		return nil
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *DiskStorage) resolve(path string) (string, bool) {
	if path == "" || filepath.IsAbs(path) {
		return "", false
	}
	full := filepath.Join(s.root, filepath.Clean(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return full, true
}

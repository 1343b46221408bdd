// Package storage provides the filesystem-backed image store.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// DiskStore writes uploads into a single flat directory. References are
// uuid-prefixed so collisions between identically named uploads cannot occur.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns the store.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Store writes data under a fresh reference derived from the suggested name.
func (s *DiskStore) Store(_ context.Context, data []byte, suggestedName string) (string, error) {
	ref := uuid.NewString() + "-" + sanitize(suggestedName)
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("store file: %w", err)
	}
	return ref, nil
}

// Resolve maps a reference to its on-disk path, rejecting traversal attempts.
func (s *DiskStore) Resolve(_ context.Context, ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) {
		return "", domain.ErrImageNotFound
	}
	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err != nil {
		return "", domain.ErrImageNotFound
	}
	return path, nil
}

// Remove deletes a stored file. Removing an unknown reference is not an error.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func sanitize(name string) string {
	name = strings.ToLower(filepath.Base(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

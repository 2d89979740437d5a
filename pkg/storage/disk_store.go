package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that would escape the store root.
var ErrInvalidName = errors.New("invalid file name")

// DiskStore keeps generated report files under a root directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory when missing.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		root = "./data/reports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Put writes data under name and returns the stored name.
func (s *DiskStore) Put(name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return name, nil
}

// Open returns a read handle for a stored file.
func (s *DiskStore) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	return file, nil
}

// Prune deletes files last modified before now minus retention and returns
// their names.
func (s *DiskStore) Prune(retention time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list report directory: %w", err)
	}
	cutoff := now.Add(-retention)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("stat report file: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove report file: %w", err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// resolve keeps files flat inside the root.
func (s *DiskStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, name), nil
}

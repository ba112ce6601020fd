// Package storage persists device image blobs and hands back opaque
// locators. The registry record only ever stores the locator.
package storage

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

// ImageStore stores image bytes and reads them back by locator.
type ImageStore interface {
	Save(ext string, data []byte) (string, error)
	Read(locator string) ([]byte, error)
}

// DiskStore keeps images as files under a single directory. There is no
// consistency guarantee between registry records and files on disk; a
// dangling locator surfaces as a read error.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store
// rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes data under a fresh unique filename and returns the filename as
// the locator. ext should include the leading dot ("" is fine).
func (s *DiskStore) Save(ext string, data []byte) (string, error) {
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), rand.IntN(1_000_000_000), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return name, nil
}

// Read returns the bytes for a previously saved locator.
func (s *DiskStore) Read(locator string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(locator)))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", locator, err)
	}
	return data, nil
}

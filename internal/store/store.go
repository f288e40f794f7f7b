// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a named document does not exist
var ErrNotFound = errors.New("document not found")

// Store persists configuration documents by name
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	List(ctx context.Context) ([]string, error)
}

// FileStore keeps each document as <dir>/<name>.xml
type FileStore struct {
	logger *logrus.Logger
	dir    string
}

const fileExt = ".xml"

// NewFileStore creates a file-backed store rooted at dir
func NewFileStore(logger *logrus.Logger, dir string) *FileStore {
	return &FileStore{logger: logger, dir: dir}
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name+fileExt)
}

// Load reads the named document
func (fs *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	file := fs.path(name)
	fs.logger.WithField("file", file).Debug("Loading document")

	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document file '%s': %w", file, err)
	}
	return data, nil
}

// Save writes the named document, creating the directory if needed
func (fs *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory '%s': %w", fs.dir, err)
	}

	file := fs.path(name)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("failed to write document file '%s': %w", file, err)
	}

	fs.logger.WithField("file", file).Info("Document saved")
	return nil
}

// List returns the names of all stored documents, sorted
func (fs *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory '%s': %w", fs.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !isDocument(entry) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func isDocument(entry os.DirEntry) bool {
	return !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), fileExt)
}

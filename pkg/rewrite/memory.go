package rewrite

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

// MemoryFileSystem is a map-backed FileSystem used by tests. The provided
// map is copied before mutation so fixtures stay reusable.
type MemoryFileSystem struct {
	Files map[string]string
}

// NewMemoryFileSystem seeds an in-memory filesystem with the given files.
func NewMemoryFileSystem(files map[string]string) *MemoryFileSystem {
	snapshot := make(map[string]string, len(files))
	for k, v := range files {
		snapshot[k] = v
	}
	return &MemoryFileSystem{Files: snapshot}
}

func (m *MemoryFileSystem) ReadText(path string) (string, error) {
	content, ok := m.Files[path]
	if !ok {
		return "", fmt.Errorf("failed to read %s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}

func (m *MemoryFileSystem) WriteText(path string, content string) error {
	m.Files[path] = content
	return nil
}

func (m *MemoryFileSystem) Create(path string) (io.WriteCloser, error) {
	return &memoryFile{fs: m, path: path}, nil
}

func (m *MemoryFileSystem) Abs(path string) (string, error) {
	return filepath.Clean(path), nil
}

// memoryFile buffers writes and commits them to the map on Close.
type memoryFile struct {
	bytes.Buffer
	fs   *MemoryFileSystem
	path string
}

func (f *memoryFile) Close() error {
	f.fs.Files[f.path] = f.String()
	return nil
}

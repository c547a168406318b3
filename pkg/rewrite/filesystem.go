package rewrite

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the capability the engine needs from its host: reading and
// writing text files and creating auxiliary output streams. Implementations
// own the encoding concerns so the core logic can run against an in-memory
// substitute in tests.
type FileSystem interface {
	ReadText(path string) (string, error)
	WriteText(path string, content string) error
	Create(path string) (io.WriteCloser, error)
	Abs(path string) (string, error)
}

const utf8BOM = "\ufeff"

// OSFileSystem is the real-filesystem implementation. Files are written as
// UTF-8 with a byte-order mark, the encoding convention of the C# sources
// this tool rewrites; a mark present on read is stripped so offsets line up
// with what gets written back.
type OSFileSystem struct{}

func (OSFileSystem) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}

func (OSFileSystem) WriteText(path string, content string) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode() & fs.ModePerm
	}
	return os.WriteFile(path, []byte(utf8BOM+content), perm)
}

func (OSFileSystem) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

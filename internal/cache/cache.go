package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// File - кэш сырого ответа с контентом сессии (один файл на прогон).
type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Save перезаписывает файл целиком.
func (f *File) Save(raw []byte) error {
	if err := ensureDir(f.path); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Load() ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", f.path, err)
	}
	return raw, nil
}

// ensureDir создаёт родительскую директорию, если её нет.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mailbridge/internal/domain/repositories"
)

// FilesystemStorage хранит объекты на локальном диске. Предназначено для разработки и тестов.
type FilesystemStorage struct {
	baseDir string
}

var _ repositories.ObjectStorage = (*FilesystemStorage)(nil)

// NewFilesystemStorage создает хранилище в каталоге baseDir
func NewFilesystemStorage(baseDir string) (*FilesystemStorage, error) {
	if baseDir == "" {
		baseDir = "storage"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("не удалось определить путь хранилища: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог хранилища: %w", err)
	}
	return &FilesystemStorage{baseDir: abs}, nil
}

// Put записывает объект и возвращает URI вида file:///abs/path
func (s *FilesystemStorage) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("недопустимый ключ объекта: %q", key)
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог объекта: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("не удалось записать объект: %w", err)
	}
	return "file://" + filepath.ToSlash(path), nil
}

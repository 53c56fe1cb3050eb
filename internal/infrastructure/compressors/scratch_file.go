package compressors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ScratchSpace каталог для временных файлов тяжелого прохода
type ScratchSpace struct {
	dir string
}

// NewScratchSpace создает пространство временных файлов в dir.
// Пустой dir означает системный временный каталог.
func NewScratchSpace(dir string) *ScratchSpace {
	return &ScratchSpace{dir: dir}
}

// Dir возвращает каталог временных файлов
func (s *ScratchSpace) Dir() string {
	if s.dir == "" {
		return os.TempDir()
	}
	return s.dir
}

// ScratchFile временный файл с уникальным именем
type ScratchFile struct {
	path string
}

// Create резервирует уникальное имя по шаблону os.CreateTemp.
// Файл создается пустым и сразу закрывается.
func (s *ScratchSpace) Create(pattern string) (*ScratchFile, error) {
	f, err := os.CreateTemp(s.dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("не удалось закрыть временный файл %s: %w", path, err)
	}
	return &ScratchFile{path: path}, nil
}

// Path возвращает путь к файлу
func (f *ScratchFile) Path() string {
	return f.path
}

// Write записывает данные и сбрасывает их на диск до возврата
func (f *ScratchFile) Write(data []byte) error {
	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("не удалось открыть временный файл %s: %w", f.path, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("не удалось записать временный файл %s: %w", f.path, err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("не удалось сбросить временный файл %s: %w", f.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("не удалось закрыть временный файл %s: %w", f.path, err)
	}
	return nil
}

// Release удаляет файл. Уже удаленный файл не считается ошибкой.
func (f *ScratchFile) Release() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("не удалось удалить временный файл %s: %w", f.path, err)
	}
	return nil
}

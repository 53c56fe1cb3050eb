package repositories

import (
	"context"
	"io"

	"mailbridge/internal/domain/entities"
)

// PDFCompressor интерфейс для сжатия PDF в памяти.
// Возвращает итоговые байты и их длину; результат никогда не длиннее входа.
type PDFCompressor interface {
	Compress(ctx context.Context, data []byte, quality entities.Quality) ([]byte, int, error)
}

// StructuralRewriter перезаписывает PDF без потери содержимого
type StructuralRewriter interface {
	Rewrite(ctx context.Context, rs io.ReadSeeker, opts entities.RewriteOptions) ([]byte, error)
}

// Rasterizer выполняет тяжелый проход внешним инструментом между двумя файлами
type Rasterizer interface {
	Rasterize(ctx context.Context, inputPath, outputPath string, quality entities.Quality) error
}

// CommandResult результат завершившегося внешнего процесса
type CommandResult struct {
	ExitCode int
	Stderr   string
}

// CommandExecutor запускает внешние процессы
type CommandExecutor interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	GetFileInfo(path string) (*entities.PDFDocument, error)
	FileExists(path string) bool
	CreateDirectory(path string) error
	ListPDFFiles(directory string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// ConfigRepository интерфейс для работы с конфигурацией сжатия
type ConfigRepository interface {
	GetCompressionConfig(quality entities.Quality) (*entities.CompressionConfig, error)
	ValidateConfig(config *entities.CompressionConfig) error
}

// ObjectStorage хранилище объектов
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// StorageProvider открывает настроенное хранилище и возвращает префикс ключей
type StorageProvider interface {
	Open(ctx context.Context) (ObjectStorage, string, error)
}

// SettingsRepository доступ к таблице LVAL
type SettingsRepository interface {
	// LoadGroup возвращает активные значения группы в виде DESCRIP → CODLVAL
	LoadGroup(ctx context.Context, group string) (map[string]string, error)
	ListGroup(ctx context.Context, group string) ([]entities.CredentialMetadata, error)
	UpdateValue(ctx context.Context, group, descrip, value string) (int64, error)
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// FileLogger реализация логгера поверх slog с записью в файл или stderr
type FileLogger struct {
	logger *slog.Logger
	file   *os.File
}

var _ repositories.Logger = (*FileLogger)(nil)

// NewFileLogger создает логгер по настройкам вывода.
// Если запись в файл выключена, сообщения идут в stderr.
func NewFileLogger(cfg entities.OutputConfig) (*FileLogger, error) {
	if !cfg.LogToFile {
		return New(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
	}

	file, err := os.OpenFile(cfg.LogFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла лога %s: %w", cfg.LogFileName, err)
	}

	l := New(file, cfg.LogLevel, cfg.LogFormat)
	l.file = file
	return l, nil
}

// New создает логгер, пишущий в w
func New(w io.Writer, level, format string) *FileLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &FileLogger{logger: slog.New(handler)}
}

// ParseLevel переводит уровень из конфигурации в slog.Level, по умолчанию info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug логирует отладочное сообщение
func (l *FileLogger) Debug(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Info логирует информационное сообщение
func (l *FileLogger) Info(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warning логирует предупреждение
func (l *FileLogger) Warning(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error логирует ошибку
func (l *FileLogger) Error(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// Success логирует успешное выполнение на уровне info
func (l *FileLogger) Success(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...), slog.String("status", "success"))
}

// With возвращает логгер с дополнительными атрибутами.
// Файл остается во владении исходного логгера.
func (l *FileLogger) With(attrs ...any) repositories.Logger {
	return &FileLogger{logger: l.logger.With(attrs...)}
}

// Close закрывает файл лога
func (l *FileLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

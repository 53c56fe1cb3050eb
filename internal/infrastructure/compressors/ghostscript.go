package compressors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// DefaultGhostscriptTimeout ограничение времени одного прохода Ghostscript
const DefaultGhostscriptTimeout = 120 * time.Second

// GhostscriptArgs возвращает аргументы командной строки тяжелого прохода.
// Порядок аргументов фиксирован.
func GhostscriptArgs(quality entities.Quality, inputPath, outputPath string) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + string(quality),
		"-dNOPAUSE",
		"-dBATCH",
		"-dQUIET",
		"-dAutoRotatePages=/None",
		"-dDetectDuplicateImages=true",
		"-dDownsampleColorImages=true",
		"-dColorImageResolution=150",
		"-sOutputFile=" + outputPath,
		inputPath,
	}
}

// GhostscriptRasterizer выполняет перекодирование документа через Ghostscript
type GhostscriptRasterizer struct {
	binary   string
	executor repositories.CommandExecutor
	timeout  time.Duration
	slots    *semaphore.Weighted
	logger   repositories.Logger
}

var _ repositories.Rasterizer = (*GhostscriptRasterizer)(nil)

// NewGhostscriptRasterizer создает растеризатор.
// maxConcurrent ограничивает число одновременно запущенных процессов.
func NewGhostscriptRasterizer(
	binary string,
	executor repositories.CommandExecutor,
	timeout time.Duration,
	maxConcurrent int,
	logger repositories.Logger,
) *GhostscriptRasterizer {
	if binary == "" {
		binary = "gs"
	}
	if timeout <= 0 {
		timeout = DefaultGhostscriptTimeout
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &GhostscriptRasterizer{
		binary:   binary,
		executor: executor,
		timeout:  timeout,
		slots:    semaphore.NewWeighted(int64(maxConcurrent)),
		logger:   logger,
	}
}

// IsAvailable проверяет наличие исполняемого файла Ghostscript
func (g *GhostscriptRasterizer) IsAvailable() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// Rasterize перекодирует inputPath в outputPath с пресетом quality
func (g *GhostscriptRasterizer) Rasterize(ctx context.Context, inputPath, outputPath string, quality entities.Quality) error {
	if err := g.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("ожидание запуска Ghostscript прервано: %w", err)
	}
	defer g.slots.Release(1)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	args := GhostscriptArgs(quality, inputPath, outputPath)
	g.logger.Debug("Запуск %s %s", g.binary, strings.Join(args, " "))

	started := time.Now()
	result, err := g.executor.Run(ctx, g.binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("Ghostscript не завершился за %s: %w", g.timeout, err)
		}
		return fmt.Errorf("не удалось выполнить Ghostscript: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("Ghostscript завершился с кодом %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("Ghostscript не создал выходной файл: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("Ghostscript создал пустой выходной файл")
	}

	g.logger.Debug("Ghostscript завершен за %s, результат %d байт", time.Since(started).Round(time.Millisecond), info.Size())
	return nil
}

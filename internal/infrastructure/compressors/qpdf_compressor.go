package compressors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// Коды выхода qpdf
const (
	qpdfExitOK       = 0
	qpdfExitError    = 2
	qpdfExitWarnings = 3
)

// QPDFArgs возвращает аргументы qpdf для параметров перезаписи
func QPDFArgs(opts entities.RewriteOptions, inputPath, outputPath string) []string {
	args := make([]string, 0, 6)
	if opts.CompressStreams {
		args = append(args, "--compress-streams=y")
	} else {
		args = append(args, "--compress-streams=n")
	}
	if opts.RecompressFlate {
		args = append(args, "--recompress-flate")
	}
	if opts.Linearize {
		args = append(args, "--linearize")
	}
	if opts.GenerateObjectStreams {
		args = append(args, "--object-streams=generate")
	} else {
		args = append(args, "--object-streams=preserve")
	}
	return append(args, inputPath, outputPath)
}

// QPDFRewriter структурная перезапись через утилиту qpdf
type QPDFRewriter struct {
	binary   string
	executor repositories.CommandExecutor
	scratch  *ScratchSpace
	timeout  time.Duration
	logger   repositories.Logger
}

var _ repositories.StructuralRewriter = (*QPDFRewriter)(nil)

// NewQPDFRewriter создает rewriter, запускающий qpdf через executor
func NewQPDFRewriter(
	binary string,
	executor repositories.CommandExecutor,
	scratch *ScratchSpace,
	timeout time.Duration,
	logger repositories.Logger,
) *QPDFRewriter {
	if binary == "" {
		binary = "qpdf"
	}
	if scratch == nil {
		scratch = NewScratchSpace("")
	}
	if timeout <= 0 {
		timeout = DefaultGhostscriptTimeout
	}
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &QPDFRewriter{
		binary:   binary,
		executor: executor,
		scratch:  scratch,
		timeout:  timeout,
		logger:   logger,
	}
}

// IsAvailable проверяет наличие исполняемого файла qpdf
func (q *QPDFRewriter) IsAvailable() bool {
	_, err := exec.LookPath(q.binary)
	return err == nil
}

// Rewrite перезаписывает документ через временные файлы.
// Если rs уже является файлом на диске, он передается qpdf без копирования.
func (q *QPDFRewriter) Rewrite(ctx context.Context, rs io.ReadSeeker, opts entities.RewriteOptions) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputPath, staged, err := q.stage(rs)
	if err != nil {
		return nil, err
	}
	if staged != nil {
		defer q.release(staged, &out, &err)
	}

	output, err := q.scratch.Create("mailbridge-qpdf-out-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrScratchResourceFailure, err)
	}
	defer q.release(output, &out, &err)

	if err := q.run(ctx, QPDFArgs(opts, inputPath, output.Path())); err != nil {
		return nil, err
	}

	rewritten, err := os.ReadFile(output.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrScratchResourceFailure, err)
	}
	if len(rewritten) == 0 {
		return nil, fmt.Errorf("%w: qpdf создал пустой выходной файл", entities.ErrExternalToolFailure)
	}
	return rewritten, nil
}

// stage возвращает путь к входному файлу. Если документ пришлось
// скопировать во временный файл, он возвращается для удаления.
func (q *QPDFRewriter) stage(rs io.ReadSeeker) (string, *ScratchFile, error) {
	if f, ok := rs.(*os.File); ok {
		return f.Name(), nil, nil
	}

	data, err := io.ReadAll(rs)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка чтения документа: %w", err)
	}
	input, err := q.scratch.Create("mailbridge-qpdf-in-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", entities.ErrScratchResourceFailure, err)
	}
	if err := input.Write(data); err != nil {
		_ = input.Release()
		return "", nil, fmt.Errorf("%w: %w", entities.ErrScratchResourceFailure, err)
	}
	return input.Path(), input, nil
}

func (q *QPDFRewriter) run(ctx context.Context, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	q.logger.Debug("Запуск %s %s", q.binary, strings.Join(args, " "))
	result, err := q.executor.Run(runCtx, q.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("qpdf прерван: %w", ctxErr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: qpdf не завершился за %s: %w", entities.ErrExternalToolFailure, q.timeout, err)
		}
		return fmt.Errorf("%w: не удалось выполнить qpdf: %w", entities.ErrExternalToolFailure, err)
	}

	stderr := strings.TrimSpace(result.Stderr)
	switch result.ExitCode {
	case qpdfExitOK:
		return nil
	case qpdfExitWarnings:
		q.logger.Debug("qpdf завершился с предупреждениями: %s", stderr)
		return nil
	case qpdfExitError:
		return fmt.Errorf("qpdf не смог разобрать документ: %s", stderr)
	default:
		return fmt.Errorf("%w: qpdf завершился с кодом %d: %s", entities.ErrExternalToolFailure, result.ExitCode, stderr)
	}
}

func (q *QPDFRewriter) release(f *ScratchFile, out *[]byte, err *error) {
	rerr := f.Release()
	if rerr == nil {
		return
	}
	q.logger.Warning("%v", rerr)
	if *err == nil {
		*out = nil
		*err = fmt.Errorf("%w: %w", entities.ErrScratchResourceFailure, rerr)
	}
}

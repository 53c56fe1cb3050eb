package compressors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// TieredCompressor сжимает PDF в памяти, выбирая стратегию по размеру документа:
// маленькие документы возвращаются как есть, средние только перезаписываются,
// большие сначала проходят через Ghostscript.
type TieredCompressor struct {
	rewriter   repositories.StructuralRewriter
	rasterizer repositories.Rasterizer
	scratch    *ScratchSpace
	options    entities.RewriteOptions
	logger     repositories.Logger
}

var _ repositories.PDFCompressor = (*TieredCompressor)(nil)

// NewTieredCompressor создает компрессор с параметрами перезаписи по умолчанию
func NewTieredCompressor(
	rewriter repositories.StructuralRewriter,
	rasterizer repositories.Rasterizer,
	scratch *ScratchSpace,
	logger repositories.Logger,
) *TieredCompressor {
	if scratch == nil {
		scratch = NewScratchSpace("")
	}
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &TieredCompressor{
		rewriter:   rewriter,
		rasterizer: rasterizer,
		scratch:    scratch,
		options:    entities.DefaultRewriteOptions(),
		logger:     logger,
	}
}

// WithRewriteOptions возвращает копию компрессора с другими параметрами перезаписи
func (c *TieredCompressor) WithRewriteOptions(opts entities.RewriteOptions) *TieredCompressor {
	clone := *c
	clone.options = opts
	return &clone
}

// Compress возвращает сжатые байты и их длину.
// Результат никогда не длиннее входа: если кандидат не меньше оригинала, возвращается оригинал.
// Ошибки имеют тип *entities.CompressionError.
func (c *TieredCompressor) Compress(ctx context.Context, data []byte, quality entities.Quality) ([]byte, int, error) {
	tier := entities.ClassifyTier(len(data))
	if tier == entities.TierSkip {
		c.logger.Debug("Документ %d байт не превышает порог, сжатие пропущено", len(data))
		return data, len(data), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var (
		candidate []byte
		err       error
	)
	switch tier {
	case entities.TierLight:
		candidate, err = c.light(ctx, data)
	default:
		candidate, err = c.heavy(ctx, data, quality.OrDefault())
	}
	if err != nil {
		return nil, 0, err
	}

	result := entities.PickSmaller(candidate, data)
	if len(result) == len(data) {
		c.logger.Debug("Уровень %s: кандидат %d байт не меньше оригинала %d байт, возвращен оригинал", tier, len(candidate), len(data))
	} else {
		c.logger.Debug("Уровень %s: %d → %d байт", tier, len(data), len(result))
	}
	return result, len(result), nil
}

func (c *TieredCompressor) light(ctx context.Context, data []byte) ([]byte, error) {
	out, err := c.rewriter.Rewrite(ctx, bytes.NewReader(data), c.options)
	if err != nil {
		return nil, rewriteFailure(ctx, entities.TierLight, len(data), err)
	}
	return out, nil
}

// rewriteFailure классифицирует ошибку перезаписи.
// Отмена контекста возвращается без обертки.
func rewriteFailure(ctx context.Context, tier entities.Tier, size int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	kind := entities.ErrMalformedDocument
	switch {
	case errors.Is(err, entities.ErrExternalToolFailure):
		kind = entities.ErrExternalToolFailure
	case errors.Is(err, entities.ErrScratchResourceFailure):
		kind = entities.ErrScratchResourceFailure
	}
	return entities.NewCompressionError(kind, tier, size, err)
}

func (c *TieredCompressor) heavy(ctx context.Context, data []byte, quality entities.Quality) (out []byte, err error) {
	size := len(data)
	fail := func(kind error, cause error) error {
		return entities.NewCompressionError(kind, entities.TierHeavy, size, cause)
	}

	input, err := c.scratch.Create("mailbridge-in-*.pdf")
	if err != nil {
		return nil, fail(entities.ErrScratchResourceFailure, err)
	}
	defer c.release(input, size, &out, &err)

	output, err := c.scratch.Create("mailbridge-out-*.pdf")
	if err != nil {
		return nil, fail(entities.ErrScratchResourceFailure, err)
	}
	defer c.release(output, size, &out, &err)

	if err := input.Write(data); err != nil {
		return nil, fail(entities.ErrScratchResourceFailure, err)
	}

	if err := c.rasterizer.Rasterize(ctx, input.Path(), output.Path(), quality); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fail(entities.ErrExternalToolFailure, err)
	}

	file, err := os.Open(output.Path())
	if err != nil {
		return nil, fail(entities.ErrScratchResourceFailure, err)
	}
	defer file.Close()

	rewritten, err := c.rewriter.Rewrite(ctx, file, c.options)
	if err != nil {
		return nil, rewriteFailure(ctx, entities.TierHeavy, size, fmt.Errorf("перезапись результата Ghostscript: %w", err))
	}
	return rewritten, nil
}

// release удаляет временный файл. Ошибка удаления при успешном сжатии
// превращает результат в ошибку временных ресурсов.
func (c *TieredCompressor) release(f *ScratchFile, size int, out *[]byte, err *error) {
	rerr := f.Release()
	if rerr == nil {
		return
	}
	c.logger.Warning("%v", rerr)
	if *err == nil {
		*out = nil
		*err = entities.NewCompressionError(entities.ErrScratchResourceFailure, entities.TierHeavy, size, rerr)
	}
}

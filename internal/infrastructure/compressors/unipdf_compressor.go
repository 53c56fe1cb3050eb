package compressors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/unidoc/unipdf/v3/common"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/model/optimize"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// ErrUniPDFLicenseMissing лицензионный ключ UniPDF не задан
var ErrUniPDFLicenseMissing = errors.New("UniPDF требует лицензионный ключ: задайте compression.unipdf_license_key или UNIDOC_LICENSE_API_KEY, либо используйте алгоритм 'pdfcpu'")

// UniPDFRewriter структурная перезапись с использованием UniPDF
type UniPDFRewriter struct {
	logger repositories.Logger
}

var _ repositories.StructuralRewriter = (*UniPDFRewriter)(nil)

// NewUniPDFRewriter создает UniPDF rewriter и активирует лицензию
func NewUniPDFRewriter(licenseKey string, logger repositories.Logger) (*UniPDFRewriter, error) {
	if licenseKey == "" {
		return nil, ErrUniPDFLicenseMissing
	}
	if err := license.SetMeteredKey(licenseKey); err != nil {
		return nil, fmt.Errorf("ошибка активации лицензии UniPDF: %w", err)
	}
	common.SetLogger(common.NewConsoleLogger(common.LogLevelError))

	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &UniPDFRewriter{logger: logger}, nil
}

// Rewrite перезаписывает документ постранично с оптимизатором UniPDF
func (u *UniPDFRewriter) Rewrite(ctx context.Context, rs io.ReadSeeker, opts entities.RewriteOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Linearize {
		u.logger.Debug("UniPDF не поддерживает линеаризацию, документ будет записан без нее")
	}

	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия документа: %w", err)
	}

	pdfWriter := model.NewPdfWriter()
	pdfWriter.SetOptimizer(optimize.New(optimize.Options{
		CombineDuplicateDirectObjects:   true,
		CombineIdenticalIndirectObjects: true,
		CombineDuplicateStreams:         true,
		CompressStreams:                 opts.CompressStreams || opts.RecompressFlate,
		UseObjectStreams:                opts.GenerateObjectStreams,
	}))

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения количества страниц: %w", err)
	}

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения страницы %d: %w", i, err)
		}

		if err := pdfWriter.AddPage(page); err != nil {
			return nil, fmt.Errorf("ошибка добавления страницы %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := pdfWriter.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи документа: %w", err)
	}

	return buf.Bytes(), nil
}

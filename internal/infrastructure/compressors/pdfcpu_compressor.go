package compressors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

var disablePDFCPUConfigDir sync.Once

// PDFCPURewriter структурная перезапись с использованием PDFCPU
type PDFCPURewriter struct {
	logger repositories.Logger
}

var _ repositories.StructuralRewriter = (*PDFCPURewriter)(nil)

// NewPDFCPURewriter создает новый PDFCPU rewriter.
// Каталог конфигурации pdfcpu отключается: сервис не пишет в домашний каталог.
func NewPDFCPURewriter(logger repositories.Logger) *PDFCPURewriter {
	disablePDFCPUConfigDir.Do(api.DisableConfigDir)
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &PDFCPURewriter{logger: logger}
}

// Rewrite оптимизирует документ: удаляет дубликаты объектов, сжимает потоки
// Flate, упаковывает объекты в object streams и пишет xref stream.
func (p *PDFCPURewriter) Rewrite(ctx context.Context, rs io.ReadSeeker, opts entities.RewriteOptions) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Linearize {
		p.logger.Debug("PDFCPU не поддерживает линеаризацию, документ будет записан без нее")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = opts.GenerateObjectStreams
	conf.WriteXRefStream = opts.GenerateObjectStreams

	// pdfcpu может паниковать на поврежденных документах
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("ошибка оптимизации PDFCPU: %v", r)
		}
	}()

	pdf, _, _, _, err := api.ReadValidateAndOptimize(rs, conf, time.Now())
	if err != nil {
		return nil, fmt.Errorf("ошибка оптимизации PDFCPU: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n := deflateStreams(pdf.XRefTable, opts); n > 0 {
		p.logger.Debug("PDFCPU: сжато потоков: %d", n)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdf, &buf); err != nil {
		return nil, fmt.Errorf("ошибка записи PDFCPU: %w", err)
	}

	return buf.Bytes(), nil
}

// deflateStreams кодирует Flate несжатые потоки и пересжимает потоки Flate.
// Поток меняется, только если результат короче. Возвращает число измененных потоков.
func deflateStreams(table *model.XRefTable, opts entities.RewriteOptions) int {
	changed := 0
	for _, entry := range table.Table {
		if entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || len(sd.Raw) == 0 {
			continue
		}
		if t := sd.Type(); t != nil && *t == "Metadata" {
			continue
		}

		var updated bool
		switch {
		case opts.CompressStreams && sd.FilterPipeline == nil:
			sd, updated = encodeFlate(sd)
		case opts.RecompressFlate && sd.HasSoleFilterNamed(filter.Flate) && sd.FilterPipeline[0].DecodeParms == nil:
			sd, updated = recompressFlate(sd)
		}
		if updated {
			entry.Object = sd
			changed++
		}
	}
	return changed
}

func encodeFlate(sd types.StreamDict) (types.StreamDict, bool) {
	encoded := sd
	encoded.Dict = sd.Dict.Clone().(types.Dict)
	encoded.Content = sd.Raw
	encoded.FilterPipeline = []types.PDFFilter{{Name: filter.Flate}}
	encoded.InsertName("Filter", filter.Flate)
	if err := encoded.Encode(); err != nil || len(encoded.Raw) >= len(sd.Raw) {
		return sd, false
	}
	return encoded, true
}

func recompressFlate(sd types.StreamDict) (types.StreamDict, bool) {
	encoded := sd
	encoded.Dict = sd.Dict.Clone().(types.Dict)
	encoded.Content = nil
	if err := encoded.Decode(); err != nil {
		return sd, false
	}
	if err := encoded.Encode(); err != nil || len(encoded.Raw) >= len(sd.Raw) {
		return sd, false
	}
	return encoded, true
}

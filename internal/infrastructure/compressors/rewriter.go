package compressors

import (
	"fmt"
	"time"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// NewRewriter выбирает библиотеку структурной перезаписи по конфигурации.
// Если qpdf не найден, используется pdfcpu.
func NewRewriter(
	cfg entities.AppCompressionConfig,
	executor repositories.CommandExecutor,
	scratch *ScratchSpace,
	timeout time.Duration,
	logger repositories.Logger,
) (repositories.StructuralRewriter, error) {
	if logger == nil {
		logger = repositories.NopLogger{}
	}

	switch cfg.Algorithm {
	case entities.AlgorithmQPDF, "":
		qpdf := NewQPDFRewriter(cfg.QPDFPath, executor, scratch, timeout, logger)
		if !qpdf.IsAvailable() {
			logger.Warning("qpdf (%s) не найден, структурная перезапись выполняется через pdfcpu", qpdf.binary)
			return NewPDFCPURewriter(logger), nil
		}
		return qpdf, nil
	case entities.AlgorithmUniPDF:
		return NewUniPDFRewriter(cfg.UniPDFLicenseKey, logger)
	case entities.AlgorithmPDFCPU:
		return NewPDFCPURewriter(logger), nil
	default:
		return nil, fmt.Errorf("неизвестный алгоритм сжатия: %q", cfg.Algorithm)
	}
}

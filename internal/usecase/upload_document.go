package usecases

import (
	"context"
	"fmt"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// ContentTypeDetector определяет MIME-тип сохраняемого объекта
type ContentTypeDetector func(filename string, data []byte) string

// UploadDocumentUseCase сценарий загрузки документа в хранилище.
// PDF перед сохранением сжимается, остальные форматы сохраняются как есть.
type UploadDocumentUseCase struct {
	compressor  repositories.PDFCompressor
	storage     repositories.StorageProvider
	detectType  ContentTypeDetector
	logger      repositories.Logger
	quality     entities.Quality
	maxBytes    int
	keepOnError bool
}

// NewUploadDocumentUseCase создает сценарий загрузки
func NewUploadDocumentUseCase(
	compressor repositories.PDFCompressor,
	storage repositories.StorageProvider,
	detectType ContentTypeDetector,
	config *entities.Config,
	logger repositories.Logger,
) *UploadDocumentUseCase {
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &UploadDocumentUseCase{
		compressor:  compressor,
		storage:     storage,
		detectType:  detectType,
		logger:      logger,
		quality:     config.Compression.Quality.OrDefault(),
		maxBytes:    config.Storage.MaxUploadBytes(),
		keepOnError: config.Compression.StoreOriginalOnFailure,
	}
}

// Execute проверяет запрос, при необходимости сжимает документ и сохраняет его.
// Ключ объекта складывается из префикса хранилища и имени файла.
func (uc *UploadDocumentUseCase) Execute(ctx context.Context, req *entities.UploadRequest) (*entities.UploadResult, error) {
	if err := req.Validate(uc.maxBytes); err != nil {
		return nil, err
	}

	log := uc.logger.With("filename", req.Filename, "process_id", req.ProcessID)

	blob := req.Blob
	result := &entities.UploadResult{
		Filename:  req.Filename,
		ProcessID: req.ProcessID,
	}

	if req.IsPDF() {
		tier := entities.ClassifyTier(len(blob))
		compressed, size, err := uc.compressor.Compress(ctx, blob, uc.quality)
		switch {
		case err == nil:
			log.Info("PDF сжат (уровень %s): %d → %d байт", tier, len(blob), size)
			blob = compressed
			result.Tier = tier.String()
			result.Compressed = size < len(req.Blob)
		case uc.keepOnError && ctx.Err() == nil:
			log.Warning("Сжатие не удалось (%s), сохраняется оригинал: %v", entities.CompressionErrorKind(err), err)
		default:
			return nil, fmt.Errorf("ошибка сжатия %s: %w", req.Filename, err)
		}
	}

	store, prefix, err := uc.storage.Open(ctx)
	if err != nil {
		return nil, err
	}

	key := prefix + req.Filename
	url, err := store.Put(ctx, key, blob, uc.detectType(req.Filename, blob))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки %s: %w", key, err)
	}

	result.URL = url
	result.DocumentID = key
	result.Size = len(blob)
	result.SizeLabel = entities.SizeLabel(len(blob))

	log.Success("Документ сохранен: %s (%s)", url, result.SizeLabel)
	return result, nil
}

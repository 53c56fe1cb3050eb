package usecases

import (
	"context"
	"fmt"
	"path/filepath"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// CompressPDFUseCase сценарий сжатия одного PDF файла
type CompressPDFUseCase struct {
	compressor repositories.PDFCompressor
	fileRepo   repositories.FileRepository
	configRepo repositories.ConfigRepository
}

// NewCompressPDFUseCase создает новый сценарий сжатия PDF
func NewCompressPDFUseCase(
	compressor repositories.PDFCompressor,
	fileRepo repositories.FileRepository,
	configRepo repositories.ConfigRepository,
) *CompressPDFUseCase {
	return &CompressPDFUseCase{
		compressor: compressor,
		fileRepo:   fileRepo,
		configRepo: configRepo,
	}
}

// Execute выполняет сжатие PDF файла.
// Если outputPath пуст, результат пишется рядом с исходным файлом как <имя>_compressed.pdf.
func (uc *CompressPDFUseCase) Execute(ctx context.Context, inputPath, outputPath string, quality entities.Quality) (*entities.CompressionResult, error) {
	if !uc.fileRepo.FileExists(inputPath) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, inputPath)
	}

	config, err := uc.configRepo.GetCompressionConfig(quality.OrDefault())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания конфигурации: %w", err)
	}
	if err := uc.configRepo.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath)
	}

	data, err := uc.fileRepo.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	compressed, size, err := uc.compressor.Compress(ctx, data, config.Quality)
	if err != nil {
		return nil, fmt.Errorf("ошибка сжатия файла: %w", err)
	}

	if err := uc.fileRepo.WriteFile(outputPath, compressed); err != nil {
		return nil, err
	}

	result := &entities.CompressionResult{
		CurrentFile:    inputPath,
		OutputFile:     outputPath,
		Tier:           entities.ClassifyTier(len(data)),
		Quality:        config.Quality,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(size),
		Attempts:       1,
		Success:        true,
	}
	result.CalculateCompressionRatio()
	return result, nil
}

// DefaultOutputPath возвращает путь <имя>_compressed<расширение>
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := inputPath[:len(inputPath)-len(ext)]
	return base + "_compressed" + ext
}

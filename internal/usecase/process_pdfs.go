package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// ProcessPDFsUseCase сценарий пакетной обработки PDF файлов директории
type ProcessPDFsUseCase struct {
	compressor       repositories.PDFCompressor
	fileRepo         repositories.FileRepository
	configRepo       repositories.ConfigRepository
	logger           repositories.Logger
	progressReporter func(entities.ProcessingStatus)
	newBackOff       func(attempts int) backoff.BackOff
}

// NewProcessPDFsUseCase создает новый сценарий обработки PDF
func NewProcessPDFsUseCase(
	compressor repositories.PDFCompressor,
	fileRepo repositories.FileRepository,
	configRepo repositories.ConfigRepository,
	logger repositories.Logger,
) *ProcessPDFsUseCase {
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &ProcessPDFsUseCase{
		compressor: compressor,
		fileRepo:   fileRepo,
		configRepo: configRepo,
		logger:     logger,
		newBackOff: defaultRetryBackOff,
	}
}

func defaultRetryBackOff(attempts int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

// SetProgressReporter устанавливает функцию для отчета о прогрессе
func (uc *ProcessPDFsUseCase) SetProgressReporter(reporter func(entities.ProcessingStatus)) {
	uc.progressReporter = reporter
}

// SetRetryBackOff заменяет политику пауз между попытками
func (uc *ProcessPDFsUseCase) SetRetryBackOff(factory func(attempts int) backoff.BackOff) {
	uc.newBackOff = factory
}

// reportProgress отправляет обновление прогресса
func (uc *ProcessPDFsUseCase) reportProgress(status *entities.ProcessingStatus) {
	if uc.progressReporter != nil {
		uc.progressReporter(*status)
	}
}

// Execute выполняет обработку PDF файлов согласно конфигурации.
// Каждому запуску присваивается идентификатор, который попадает во все записи лога.
func (uc *ProcessPDFsUseCase) Execute(ctx context.Context, config *entities.Config) (*entities.ProcessingStatus, error) {
	runID := uuid.NewString()
	run := *uc
	run.logger = uc.logger.With("run_id", runID)
	return run.execute(ctx, runID, config)
}

func (uc *ProcessPDFsUseCase) execute(ctx context.Context, runID string, config *entities.Config) (*entities.ProcessingStatus, error) {
	// Фаза 1: Инициализация
	status := entities.NewProcessingStatus(runID, 0)
	status.SetPhase(entities.PhaseInitializing, "Инициализация обработки...")
	uc.reportProgress(status)

	fail := func(err error) (*entities.ProcessingStatus, error) {
		status.Fail(err)
		uc.reportProgress(status)
		return status, err
	}

	quality := config.Compression.Quality.OrDefault()

	uc.logger.Info("╔════════════════════════════════════════════════════════════")
	uc.logger.Info("║ Начало обработки PDF файлов")
	uc.logger.Info("╠════════════════════════════════════════════════════════════")
	uc.logger.Info("║ Исходная директория: %s", config.Scanner.SourceDirectory)
	if config.Scanner.ReplaceOriginal {
		uc.logger.Info("║ Режим: Замена оригинальных файлов")
	} else {
		uc.logger.Info("║ Целевая директория: %s", config.Scanner.TargetDirectory)
	}
	uc.logger.Info("║ Алгоритм: %s", config.Compression.Algorithm)
	uc.logger.Info("║ Качество: %s", quality)
	uc.logger.Info("║ Параллельных воркеров: %d", config.Processing.ParallelWorkers)
	uc.logger.Info("╚════════════════════════════════════════════════════════════")

	if !quality.IsKnown() {
		uc.logger.Warning("Пресет качества %q не входит в стандартные %v и будет передан Ghostscript как есть", quality, entities.KnownQualities())
	}

	if !uc.fileRepo.FileExists(config.Scanner.SourceDirectory) {
		return fail(fmt.Errorf("%w: %s", entities.ErrDirectoryNotFound, config.Scanner.SourceDirectory))
	}

	if !config.Scanner.ReplaceOriginal {
		if err := uc.fileRepo.CreateDirectory(config.Scanner.TargetDirectory); err != nil {
			return fail(fmt.Errorf("ошибка создания целевой директории: %w", err))
		}
	}

	// Фаза 2: Сканирование файлов
	status.SetPhase(entities.PhaseScanning, "Сканирование PDF файлов...")
	uc.reportProgress(status)
	uc.logger.Info("🔍 Сканирование директории...")

	files, err := uc.fileRepo.ListPDFFiles(config.Scanner.SourceDirectory)
	if err != nil {
		return fail(fmt.Errorf("ошибка получения списка файлов: %w", err))
	}

	if len(files) == 0 {
		uc.logger.Warning("⚠️  PDF файлы не найдены в директории: %s", config.Scanner.SourceDirectory)
		status.Complete()
		uc.reportProgress(status)
		return status, nil
	}

	status.TotalFiles = len(files)
	uc.logger.Success("✓ Найдено файлов для обработки: %d", len(files))

	compressionConfig, err := uc.configRepo.GetCompressionConfig(quality)
	if err != nil {
		return fail(fmt.Errorf("ошибка создания конфигурации сжатия: %w", err))
	}
	if err := uc.configRepo.ValidateConfig(compressionConfig); err != nil {
		return fail(fmt.Errorf("ошибка валидации конфигурации сжатия: %w", err))
	}

	// Фаза 3: Сжатие файлов
	status.SetPhase(entities.PhaseCompressing, "Сжатие PDF файлов...")
	uc.reportProgress(status)
	uc.logger.Info("")
	uc.logger.Info("🔄 Начало сжатия файлов...")
	uc.logger.Info("─────────────────────────────────────────────────────────────")

	workers := config.Processing.ParallelWorkers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string, len(files))
	results := make(chan *entities.CompressionResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go uc.worker(ctx, jobs, results, &wg, config, compressionConfig)
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	fileCounter := 0
	for result := range results {
		fileCounter++
		status.AddResult(result)
		status.SetCurrentFile(result.CurrentFile, result.OriginalSize)
		uc.reportProgress(status)

		fileName := filepath.Base(result.CurrentFile)
		switch {
		case result.Skipped:
			uc.logger.Warning("[%d/%d] = %s: сжатая версия не меньше оригинала, файл оставлен без изменений",
				fileCounter, status.TotalFiles, fileName)
		case result.Success && result.Error == nil:
			uc.logger.Success("[%d/%d] ✓ %s (уровень %s)", fileCounter, status.TotalFiles, fileName, result.Tier)
			uc.logger.Info("    └─ Размер: %.2f MB → %.2f MB",
				float64(result.OriginalSize)/1024/1024,
				float64(result.CompressedSize)/1024/1024)
			uc.logger.Info("    └─ Сжатие: %.1f%% | Сэкономлено: %.2f MB",
				result.CompressionRatio,
				float64(result.SavedSpace)/1024/1024)
		default:
			uc.logger.Error("[%d/%d] ✗ %s", fileCounter, status.TotalFiles, fileName)
			uc.logger.Error("    └─ Ошибка (%s): %v", entities.CompressionErrorKind(result.Error), result.Error)
		}
	}

	if err := ctx.Err(); err != nil {
		uc.logger.Warning("Обработка прервана: %v", err)
		return fail(err)
	}

	status.Complete()
	uc.reportProgress(status)

	uc.logger.Info("")
	uc.logger.Info("╔════════════════════════════════════════════════════════════")
	uc.logger.Info("║ Обработка завершена")
	uc.logger.Info("╠════════════════════════════════════════════════════════════")
	uc.logger.Info("║ Время выполнения: %s", status.FormatElapsedTime())
	uc.logger.Info("╠════════════════════════════════════════════════════════════")
	uc.logger.Info("║ Статистика файлов:")
	uc.logger.Info("║   • Всего: %d", status.TotalFiles)
	uc.logger.Success("║   • Успешно: %d", status.SuccessfulFiles)
	if status.FailedFiles > 0 {
		uc.logger.Error("║   • Ошибок: %d", status.FailedFiles)
	}
	if status.SkippedFiles > 0 {
		uc.logger.Warning("║   • Пропущено: %d", status.SkippedFiles)
	}
	uc.logger.Info("║   • По уровням: skip %d, light %d, heavy %d",
		status.TierCounts[entities.TierSkip],
		status.TierCounts[entities.TierLight],
		status.TierCounts[entities.TierHeavy])

	if status.TotalOriginalSize > 0 {
		uc.logger.Info("╠════════════════════════════════════════════════════════════")
		uc.logger.Info("║ Статистика сжатия:")
		uc.logger.Info("║   • Исходный размер: %.2f MB", float64(status.TotalOriginalSize)/1024/1024)
		uc.logger.Info("║   • Сжатый размер: %.2f MB", float64(status.TotalCompressedSize)/1024/1024)
		uc.logger.Success("║   • Среднее сжатие: %.1f%%", status.AverageCompression)
		uc.logger.Success("║   • Сэкономлено: %.2f MB", float64(status.TotalSavedSpace)/1024/1024)
	}
	uc.logger.Info("╚════════════════════════════════════════════════════════════")

	return status, nil
}

// worker обрабатывает файлы в отдельной горутине
func (uc *ProcessPDFsUseCase) worker(
	ctx context.Context,
	jobs <-chan string,
	results chan<- *entities.CompressionResult,
	wg *sync.WaitGroup,
	config *entities.Config,
	compressionConfig *entities.CompressionConfig,
) {
	defer wg.Done()

	for inputFile := range jobs {
		results <- uc.processFile(ctx, inputFile, config, compressionConfig)
	}
}

func (uc *ProcessPDFsUseCase) processFile(
	ctx context.Context,
	inputFile string,
	config *entities.Config,
	compressionConfig *entities.CompressionConfig,
) *entities.CompressionResult {
	result := &entities.CompressionResult{
		CurrentFile: inputFile,
		Quality:     compressionConfig.Quality,
	}
	failed := func(err error) *entities.CompressionResult {
		result.Success = false
		result.Error = err
		return result
	}

	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	outputFile, err := uc.outputPath(inputFile, config.Scanner)
	if err != nil {
		return failed(err)
	}
	result.OutputFile = outputFile

	data, err := uc.fileRepo.ReadFile(inputFile)
	if err != nil {
		return failed(fmt.Errorf("ошибка чтения файла: %w", err))
	}
	result.OriginalSize = int64(len(data))
	result.Tier = entities.ClassifyTier(len(data))

	compressed, attempts, err := uc.compressWithRetry(ctx, filepath.Base(inputFile), data, compressionConfig.Quality, config.Processing.RetryAttempts)
	result.Attempts = attempts
	if err != nil {
		return failed(err)
	}

	result.CompressedSize = int64(len(compressed))
	result.CalculateCompressionRatio()
	result.Success = true

	if !config.Scanner.ReplaceOriginal {
		if err := uc.fileRepo.WriteFile(outputFile, compressed); err != nil {
			return failed(err)
		}
		return result
	}

	if len(compressed) >= len(data) {
		result.Skipped = true
		result.OutputFile = inputFile
		return result
	}

	if err := uc.fileRepo.WriteFile(outputFile, compressed); err != nil {
		return failed(err)
	}
	if err := uc.replaceOriginalFile(inputFile, outputFile); err != nil {
		_ = os.Remove(outputFile)
		uc.logger.Error("Не удалось заменить оригинальный файл %s: %v", inputFile, err)
		return failed(fmt.Errorf("ошибка замены оригинального файла: %w", err))
	}
	result.OutputFile = inputFile
	return result
}

// outputPath определяет путь результата с сохранением структуры директорий
func (uc *ProcessPDFsUseCase) outputPath(inputFile string, scanner entities.ScannerConfig) (string, error) {
	if scanner.ReplaceOriginal {
		return inputFile + ".tmp", nil
	}

	relPath, err := filepath.Rel(scanner.SourceDirectory, inputFile)
	if err != nil {
		return filepath.Join(scanner.TargetDirectory, filepath.Base(inputFile)), nil
	}
	outputFile := filepath.Join(scanner.TargetDirectory, relPath)
	if err := uc.fileRepo.CreateDirectory(filepath.Dir(outputFile)); err != nil {
		return "", fmt.Errorf("не удалось создать директорию %s: %w", filepath.Dir(outputFile), err)
	}
	return outputFile, nil
}

// compressWithRetry повторяет сжатие при временных ошибках.
// Неразбираемый документ и отмена контекста не повторяются.
func (uc *ProcessPDFsUseCase) compressWithRetry(
	ctx context.Context,
	fileName string,
	data []byte,
	quality entities.Quality,
	attempts int,
) ([]byte, int, error) {
	if attempts < 1 {
		attempts = 1
	}

	var (
		out     []byte
		attempt int
	)
	op := func() error {
		attempt++
		var err error
		out, _, err = uc.compressor.Compress(ctx, data, quality)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		if attempt < attempts {
			uc.logger.Warning("Попытка %d/%d для файла %s не удалась: %v", attempt, attempts, fileName, err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(uc.newBackOff(attempts), ctx))
	return out, attempt, err
}

func isRetryable(err error) bool {
	var ce *entities.CompressionError
	return errors.As(err, &ce) && ce.IsTransient()
}

// replaceOriginalFile заменяет оригинальный файл сжатым
func (uc *ProcessPDFsUseCase) replaceOriginalFile(originalFile, tempFile string) error {
	if _, err := os.Stat(tempFile); os.IsNotExist(err) {
		return fmt.Errorf("временный файл не существует: %s", tempFile)
	}

	uc.logger.Debug("Замена оригинального файла: %s", originalFile)

	backupFile := originalFile + ".backup"

	if err := os.Rename(originalFile, backupFile); err != nil {
		return fmt.Errorf("ошибка создания резервной копии: %w", err)
	}

	if err := os.Rename(tempFile, originalFile); err != nil {
		// Восстанавливаем оригинальный файл из резервной копии
		_ = os.Rename(backupFile, originalFile)
		return fmt.Errorf("ошибка замены файла: %w", err)
	}

	if err := os.Remove(backupFile); err != nil {
		uc.logger.Warning("Не удалось удалить резервную копию %s: %v", backupFile, err)
	}

	uc.logger.Debug("Оригинальный файл успешно заменен: %s", originalFile)
	return nil
}

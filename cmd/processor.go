package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
	"mailbridge/internal/infrastructure/compressors"
	"mailbridge/internal/infrastructure/config"
	"mailbridge/internal/infrastructure/database"
	"mailbridge/internal/infrastructure/logging"
	"mailbridge/internal/infrastructure/metrics"
	infraRepos "mailbridge/internal/infrastructure/repositories"
	"mailbridge/internal/infrastructure/storage"
	"mailbridge/internal/interface/controllers"
	usecases "mailbridge/internal/usecase"
)

// ApplicationProcessor собирает зависимости приложения и освобождает их при завершении
type ApplicationProcessor struct {
	config   *entities.Config
	logger   repositories.Logger
	settings *database.LazyLvalRepository
	registry *prometheus.Registry
}

// NewApplicationProcessor создает процессор приложения
func NewApplicationProcessor() *ApplicationProcessor {
	return &ApplicationProcessor{registry: prometheus.NewRegistry()}
}

// Open загружает конфигурацию и собирает сценарии
func (p *ApplicationProcessor) Open(configPath string) (*controllers.Services, error) {
	configRepo := config.NewRepository()
	appConfig, err := configRepo.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	p.config = appConfig

	fileLogger, err := logging.NewFileLogger(appConfig.Output)
	if err != nil {
		return nil, fmt.Errorf("не удалось инициализировать логгер: %w", err)
	}
	p.logger = fileLogger

	if !appConfig.Compression.Quality.IsKnown() {
		p.logger.Warning("Пресет качества %q не входит в стандартные %v", appConfig.Compression.Quality, entities.KnownQualities())
	}

	executor := compressors.NewExecExecutor(compressors.DefaultWaitDelay)
	scratch := compressors.NewScratchSpace(appConfig.Compression.ScratchDir)

	// Выбираем библиотеку структурной перезаписи на основе конфигурации
	rewriter, err := compressors.NewRewriter(appConfig.Compression, executor, scratch, appConfig.Processing.Timeout(), p.logger)
	if err != nil {
		return nil, err
	}

	ghostscript := compressors.NewGhostscriptRasterizer(
		appConfig.Compression.GhostscriptPath,
		executor,
		appConfig.Processing.Timeout(),
		appConfig.Processing.MaxConcurrentRasterizations,
		p.logger,
	)
	if !ghostscript.IsAvailable() {
		p.logger.Warning("Ghostscript (%s) не найден: документы больше %d байт сжать не удастся", appConfig.Compression.GhostscriptPath, entities.LightThreshold)
	}

	tiered := compressors.NewTieredCompressor(rewriter, ghostscript, scratch, p.logger).
		WithRewriteOptions(appConfig.Compression.Rewrite)
	compressor := metrics.NewInstrumentedCompressor(tiered, metrics.NewCompressorMetrics(p.registry))

	// База LVAL открывается только командами upload и credentials
	settings := database.NewLazyLvalRepository(appConfig.Database, appConfig.Lval.ActiveStatus)
	p.settings = settings

	fileRepo := infraRepos.NewFileSystemRepository()
	compressionConfigRepo := infraRepos.NewConfigRepository()

	processUseCase := usecases.NewProcessPDFsUseCase(compressor, fileRepo, compressionConfigRepo, p.logger)
	processUseCase.SetProgressReporter(func(s entities.ProcessingStatus) {
		p.logger.Debug("%s: %.0f%% (%d/%d), осталось %s", s.Phase, s.Progress, s.ProcessedFiles, s.TotalFiles, s.FormatEstimatedTime())
	})

	provider := storage.NewLvalStorageProvider(settings, appConfig.Storage, appConfig.Lval, p.logger)

	return &controllers.Services{
		Config:      appConfig,
		ConfigRepo:  configRepo,
		CompressPDF: usecases.NewCompressPDFUseCase(compressor, fileRepo, compressionConfigRepo),
		ProcessPDFs: processUseCase,
		Upload:      usecases.NewUploadDocumentUseCase(compressor, provider, storage.DetectContentType, appConfig, p.logger),
		Credentials: usecases.NewManageCredentialsUseCase(settings, appConfig.Lval, p.logger),
	}, nil
}

// Shutdown выгружает метрики и закрывает ресурсы
func (p *ApplicationProcessor) Shutdown() error {
	var errs []error
	if p.config != nil {
		errs = append(errs, metrics.WriteTextfile(p.registry, p.config.Output.MetricsFile))
	}
	if p.settings != nil {
		errs = append(errs, p.settings.Close())
	}
	if p.logger != nil {
		errs = append(errs, p.logger.Close())
	}
	return errors.Join(errs...)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	os.Exit(1)
}

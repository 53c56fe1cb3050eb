package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"mailbridge/internal/domain/entities"
)

// LicenseKeyEnv переменная окружения с ключом UniPDF, если он не задан в файле
const LicenseKeyEnv = "UNIDOC_LICENSE_API_KEY"

// Repository реализация репозитория конфигурации
type Repository struct{}

// NewRepository создает новый репозиторий конфигурации
func NewRepository() *Repository {
	return &Repository{}
}

// Load загружает конфигурацию из файла.
// Значения, отсутствующие в файле, берутся из конфигурации по умолчанию.
func (r *Repository) Load(configPath string) (*entities.Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.applyEnv(config)
		return config, nil
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", configPath, err)
	}

	r.applyEnv(config)
	return config, nil
}

// Save сохраняет конфигурацию в файл. Ключ лицензии, взятый из окружения, в файл не пишется.
func (r *Repository) Save(configPath string, config *entities.Config) error {
	out := *config
	if env := os.Getenv(LicenseKeyEnv); env != "" && out.Compression.UniPDFLicenseKey == env {
		out.Compression.UniPDFLicenseKey = ""
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конфигурации: %w", err)
	}

	return os.WriteFile(configPath, data, 0o644)
}

func (r *Repository) applyEnv(config *entities.Config) {
	if config.Compression.UniPDFLicenseKey == "" {
		config.Compression.UniPDFLicenseKey = os.Getenv(LicenseKeyEnv)
	}
}

// Default возвращает конфигурацию по умолчанию
func Default() *entities.Config {
	return &entities.Config{
		Scanner: entities.ScannerConfig{
			SourceDirectory: "./pdfs",
			TargetDirectory: "./compressed",
			ReplaceOriginal: false,
		},
		Compression: entities.AppCompressionConfig{
			Algorithm:       entities.AlgorithmQPDF,
			Quality:         entities.DefaultQuality,
			GhostscriptPath: "gs",
			QPDFPath:        "qpdf",
			Rewrite:         entities.DefaultRewriteOptions(),
		},
		Processing: entities.ProcessingConfig{
			ParallelWorkers:             2,
			TimeoutSeconds:              120,
			RetryAttempts:               3,
			MaxConcurrentRasterizations: 2,
		},
		Output: entities.OutputConfig{
			LogLevel:    "info",
			LogFormat:   "text",
			LogToFile:   false,
			LogFileName: "mailbridge.log",
		},
		Database: entities.DatabaseConfig{
			Path:            "mailbridge.db",
			AutoMigrate:     true,
			CacheTTLSeconds: 300,
			CacheSize:       16,
		},
		Storage: entities.StorageConfig{
			Backend:        entities.StorageBackendS3,
			LocalDirectory: "./storage",
			LocalPrefix:    "uploads/",
			MaxUploadMB:    8,
			RetryAttempts:  3,
		},
		Lval: entities.LvalConfig{
			ActiveStatus: "ACT",
			AWSGroup:     "AWSCONF",
			JWTGroup:     "MJWTCRED",
			AWSKeys: entities.AWSKeyNames{
				Queue:    "AWS_QUEUE",
				Secret:   "AWS_SECRET",
				Key:      "AWS_KEY",
				Bucket:   "AWS_BUCKET",
				Region:   "AWS_REGION",
				S3Prefix: "AWS_S3_PREFIX",
			},
			JWTKeys: entities.JWTKeyNames{
				User:     "USER_JWT",
				Password: "PASS_JWT",
			},
		},
	}
}

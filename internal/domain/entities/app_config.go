package entities

import (
	"fmt"
	"time"
)

// Config представляет конфигурацию приложения
type Config struct {
	Scanner     ScannerConfig        `yaml:"scanner"`
	Compression AppCompressionConfig `yaml:"compression"`
	Processing  ProcessingConfig     `yaml:"processing"`
	Output      OutputConfig         `yaml:"output"`
	Database    DatabaseConfig       `yaml:"database"`
	Storage     StorageConfig        `yaml:"storage"`
	Lval        LvalConfig           `yaml:"lval"`
}

// ScannerConfig настройки сканирования директорий
type ScannerConfig struct {
	SourceDirectory string `yaml:"source_directory"`
	TargetDirectory string `yaml:"target_directory"`
	ReplaceOriginal bool   `yaml:"replace_original"`
}

// Алгоритмы структурной перезаписи
const (
	AlgorithmQPDF   = "qpdf"
	AlgorithmPDFCPU = "pdfcpu"
	AlgorithmUniPDF = "unipdf"
)

// AppCompressionConfig настройки сжатия приложения
type AppCompressionConfig struct {
	Algorithm              string         `yaml:"algorithm"`
	Quality                Quality        `yaml:"quality"`
	GhostscriptPath        string         `yaml:"ghostscript_path"`
	QPDFPath               string         `yaml:"qpdf_path"`
	ScratchDir             string         `yaml:"scratch_dir"` // пусто: системный временный каталог
	UniPDFLicenseKey       string         `yaml:"unipdf_license_key"`
	StoreOriginalOnFailure bool           `yaml:"store_original_on_failure"`
	Rewrite                RewriteOptions `yaml:"rewrite"`
}

// ProcessingConfig настройки обработки
type ProcessingConfig struct {
	ParallelWorkers             int `yaml:"parallel_workers"`
	TimeoutSeconds              int `yaml:"timeout_seconds"`
	RetryAttempts               int `yaml:"retry_attempts"`
	MaxConcurrentRasterizations int `yaml:"max_concurrent_rasterizations"`
}

// Timeout возвращает ограничение времени работы внешнего инструмента
func (p ProcessingConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// OutputConfig настройки вывода
type OutputConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // text или json
	LogToFile   bool   `yaml:"log_to_file"`
	LogFileName string `yaml:"log_file_name"`
	MetricsFile string `yaml:"metrics_file"`
}

// DatabaseConfig настройки базы данных с таблицей LVAL
type DatabaseConfig struct {
	Path            string `yaml:"path"`
	AutoMigrate     bool   `yaml:"auto_migrate"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	CacheSize       int    `yaml:"cache_size"`
}

// Бэкенды хранилища
const (
	StorageBackendS3         = "s3"
	StorageBackendFilesystem = "filesystem"
)

// StorageConfig настройки объектного хранилища
type StorageConfig struct {
	Backend        string `yaml:"backend"`
	LocalDirectory string `yaml:"local_directory"`
	LocalPrefix    string `yaml:"local_prefix"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	RetryAttempts  int    `yaml:"retry_attempts"`
}

// MaxUploadBytes возвращает лимит загрузки в байтах
func (s StorageConfig) MaxUploadBytes() int {
	return s.MaxUploadMB * 1024 * 1024
}

// LvalConfig имена групп и ключей в таблице LVAL
type LvalConfig struct {
	ActiveStatus string      `yaml:"active_status"`
	AWSGroup     string      `yaml:"aws_group"`
	JWTGroup     string      `yaml:"jwt_group"`
	AWSKeys      AWSKeyNames `yaml:"aws_keys"`
	JWTKeys      JWTKeyNames `yaml:"jwt_keys"`
}

// AWSKeyNames значения DESCRIP для параметров AWS
type AWSKeyNames struct {
	Queue    string `yaml:"queue"`
	Secret   string `yaml:"secret"`
	Key      string `yaml:"key"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	S3Prefix string `yaml:"s3_prefix"`
}

// List возвращает ключи группы в каноническом порядке
func (k AWSKeyNames) List() []string {
	return []string{k.Queue, k.Secret, k.Key, k.Bucket, k.Region, k.S3Prefix}
}

// JWTKeyNames значения DESCRIP для учетных данных пользователя API
type JWTKeyNames struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// List возвращает ключи группы в каноническом порядке
func (k JWTKeyNames) List() []string {
	return []string{k.User, k.Password}
}

// Groups возвращает известные группы и допустимые в них ключи
func (l LvalConfig) Groups() map[string][]string {
	return map[string][]string{
		l.AWSGroup: l.AWSKeys.List(),
		l.JWTGroup: l.JWTKeys.List(),
	}
}

// Validate проверяет корректность конфигурации приложения
func (c *Config) Validate() error {
	switch c.Compression.Algorithm {
	case AlgorithmQPDF, AlgorithmPDFCPU, AlgorithmUniPDF:
	default:
		return fmt.Errorf("неизвестный алгоритм сжатия: %q", c.Compression.Algorithm)
	}
	if c.Processing.ParallelWorkers < 1 {
		return fmt.Errorf("parallel_workers должен быть не меньше 1, получено %d", c.Processing.ParallelWorkers)
	}
	if c.Processing.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds должен быть не меньше 1, получено %d", c.Processing.TimeoutSeconds)
	}
	if c.Processing.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts должен быть не меньше 1, получено %d", c.Processing.RetryAttempts)
	}
	if c.Processing.MaxConcurrentRasterizations < 1 {
		return fmt.Errorf("max_concurrent_rasterizations должен быть не меньше 1, получено %d", c.Processing.MaxConcurrentRasterizations)
	}
	switch c.Storage.Backend {
	case StorageBackendS3, StorageBackendFilesystem:
	default:
		return fmt.Errorf("неизвестный бэкенд хранилища: %q", c.Storage.Backend)
	}
	if c.Storage.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb должен быть не меньше 1, получено %d", c.Storage.MaxUploadMB)
	}
	if c.Lval.AWSGroup == "" || c.Lval.JWTGroup == "" {
		return fmt.Errorf("группы LVAL не заданы")
	}
	return nil
}

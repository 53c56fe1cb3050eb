package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/infrastructure/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(config.LicenseKeyEnv, "")
	repo := config.NewRepository()

	cfg, err := repo.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 120, cfg.Processing.TimeoutSeconds)
	assert.Equal(t, entities.QualityEbook, cfg.Compression.Quality)
	assert.Equal(t, 8, cfg.Storage.MaxUploadMB)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(config.LicenseKeyEnv, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
compression:
  quality: screen
  rewrite:
    linearize: false
processing:
  timeout_seconds: 30
storage:
  backend: filesystem
`), 0o644))

	cfg, err := config.NewRepository().Load(path)
	require.NoError(t, err)

	assert.Equal(t, entities.QualityScreen, cfg.Compression.Quality)
	assert.Equal(t, "gs", cfg.Compression.GhostscriptPath)
	assert.Equal(t, entities.AlgorithmQPDF, cfg.Compression.Algorithm)
	assert.Equal(t, entities.RewriteOptions{
		CompressStreams:       true,
		RecompressFlate:       true,
		Linearize:             false,
		GenerateObjectStreams: true,
	}, cfg.Compression.Rewrite)
	assert.Equal(t, 30, cfg.Processing.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Processing.MaxConcurrentRasterizations)
	assert.Equal(t, entities.StorageBackendFilesystem, cfg.Storage.Backend)
	assert.Equal(t, "AWSCONF", cfg.Lval.AWSGroup)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing: [unclosed"), 0o644))

	_, err := config.NewRepository().Load(path)
	assert.Error(t, err)
}

func TestLoad_LicenseFromEnvironment(t *testing.T) {
	t.Setenv(config.LicenseKeyEnv, "env-key")

	cfg, err := config.NewRepository().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Compression.UniPDFLicenseKey)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(config.LicenseKeyEnv, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	repo := config.NewRepository()

	cfg := config.Default()
	cfg.Scanner.ReplaceOriginal = true
	cfg.Compression.Algorithm = entities.AlgorithmUniPDF
	cfg.Lval.AWSKeys.Bucket = "BUCKET_NAME"
	require.NoError(t, repo.Save(path, cfg))

	loaded, err := repo.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.Config)
	}{
		{"Unknown algorithm", func(c *entities.Config) { c.Compression.Algorithm = "zip" }},
		{"Zero workers", func(c *entities.Config) { c.Processing.ParallelWorkers = 0 }},
		{"Zero timeout", func(c *entities.Config) { c.Processing.TimeoutSeconds = 0 }},
		{"Zero retries", func(c *entities.Config) { c.Processing.RetryAttempts = 0 }},
		{"Zero rasterizations", func(c *entities.Config) { c.Processing.MaxConcurrentRasterizations = 0 }},
		{"Unknown backend", func(c *entities.Config) { c.Storage.Backend = "ftp" }},
		{"Zero upload limit", func(c *entities.Config) { c.Storage.MaxUploadMB = 0 }},
		{"Missing group", func(c *entities.Config) { c.Lval.AWSGroup = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

package repositories

import (
	"mailbridge/internal/domain/entities"
)

// ConfigRepository реализация репозитория конфигурации сжатия
type ConfigRepository struct{}

// NewConfigRepository создает новый репозиторий конфигурации
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// GetCompressionConfig получает конфигурацию сжатия для пресета качества
func (r *ConfigRepository) GetCompressionConfig(quality entities.Quality) (*entities.CompressionConfig, error) {
	config := entities.NewCompressionConfig(quality)
	return config, nil
}

// ValidateConfig валидирует конфигурацию
func (r *ConfigRepository) ValidateConfig(config *entities.CompressionConfig) error {
	return config.Validate()
}

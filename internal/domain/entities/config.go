package entities

// RewriteOptions параметры структурной перезаписи PDF
type RewriteOptions struct {
	CompressStreams       bool `yaml:"compress_streams"`        // Сжимать потоки данных
	RecompressFlate       bool `yaml:"recompress_flate"`        // Пересжимать потоки, уже сжатые Flate
	Linearize             bool `yaml:"linearize"`               // Линеаризация для быстрого веб-просмотра
	GenerateObjectStreams bool `yaml:"generate_object_streams"` // Упаковывать объекты в object streams
}

// DefaultRewriteOptions возвращает параметры перезаписи, общие для уровней light и heavy
func DefaultRewriteOptions() RewriteOptions {
	return RewriteOptions{
		CompressStreams:       true,
		RecompressFlate:       true,
		Linearize:             true,
		GenerateObjectStreams: true,
	}
}

// CompressionConfig представляет конфигурацию сжатия одного вызова
type CompressionConfig struct {
	Quality Quality // Пресет Ghostscript для уровня heavy
}

// NewCompressionConfig создает конфигурацию сжатия для пресета качества
func NewCompressionConfig(quality Quality) *CompressionConfig {
	return &CompressionConfig{Quality: quality.OrDefault()}
}

// Validate проверяет корректность конфигурации
func (c *CompressionConfig) Validate() error {
	if c.Quality == "" {
		return ErrEmptyQuality
	}
	return nil
}

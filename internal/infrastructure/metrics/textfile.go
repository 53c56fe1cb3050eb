package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile сохраняет метрики реестра в формате textfile collector.
// Пустой путь означает, что экспорт отключен.
func WriteTextfile(gatherer prometheus.Gatherer, path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("не удалось создать каталог метрик: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("не удалось записать метрики: %w", err)
	}
	return nil
}

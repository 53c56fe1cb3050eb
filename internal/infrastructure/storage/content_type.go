package storage

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// DetectContentType определяет MIME-тип объекта по содержимому,
// а если содержимое не распознано, по расширению имени файла.
func DetectContentType(filename string, data []byte) string {
	detected := mimetype.Detect(data)
	if !detected.Is(octetStream) {
		return detected.String()
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return octetStream
}

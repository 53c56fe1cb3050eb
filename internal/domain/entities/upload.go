package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

// allowedExtensions расширения файлов, которые можно загрузить в хранилище
var allowedExtensions = []string{".jpg", ".pdf", ".png", ".jpeg", ".doc", ".docx", ".xlsx", ".xls", ".csv"}

// AllowedExtensions возвращает список допустимых расширений
func AllowedExtensions() []string {
	out := make([]string, len(allowedExtensions))
	copy(out, allowedExtensions)
	return out
}

// UploadRequest запрос на загрузку одного документа
type UploadRequest struct {
	Filename  string
	Blob      []byte
	ProcessID int64
}

// Extension возвращает расширение имени файла в нижнем регистре
func (r *UploadRequest) Extension() string {
	return strings.ToLower(filepath.Ext(r.Filename))
}

// IsPDF сообщает, нужно ли сжимать документ
func (r *UploadRequest) IsPDF() bool {
	return r.Extension() == ".pdf"
}

// Validate проверяет запрос по правилам загрузки
func (r *UploadRequest) Validate(maxBytes int) error {
	if r.Filename == "" || len(r.Blob) == 0 {
		return ErrEmptyUpload
	}
	if len(r.Blob) > maxBytes {
		return fmt.Errorf("%w: %d байт, лимит %d байт", ErrUploadTooLarge, len(r.Blob), maxBytes)
	}
	ext := r.Extension()
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q, допустимые расширения: %s", ErrExtensionNotAllowed, r.Filename, strings.Join(allowedExtensions, ", "))
}

// UploadResult метаданные сохраненного документа
type UploadResult struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	Size       int    `json:"-"`
	SizeLabel  string `json:"size"`
	DocumentID string `json:"id_documento"`
	ProcessID  int64  `json:"id_proceso"`
	Tier       string `json:"tier,omitempty"`
	Compressed bool   `json:"compressed"`
}

// SizeLabel форматирует размер в целых килобайтах с суффиксом "kb"
func SizeLabel(size int) string {
	return fmt.Sprintf("%dkb", size/1024)
}

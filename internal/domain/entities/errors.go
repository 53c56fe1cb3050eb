package entities

import (
	"errors"
	"fmt"
)

// Доменные ошибки
var (
	ErrFileNotFound      = errors.New("файл не найден")
	ErrInvalidFileFormat = errors.New("неверный формат файла")
	ErrDirectoryNotFound = errors.New("директория не найдена")
	ErrNoFilesFound      = errors.New("PDF файлы не найдены")
	ErrEmptyQuality      = errors.New("пресет качества не задан")

	ErrEmptyUpload          = errors.New("не переданы файлы для обработки")
	ErrUploadTooLarge       = errors.New("размер загрузки превышает допустимый лимит")
	ErrExtensionNotAllowed  = errors.New("тип файла не разрешен")
	ErrStorageNotConfigured = errors.New("хранилище не настроено")
	ErrBucketNotFound       = errors.New("bucket не найден или недоступен")
	ErrStorageAccessDenied  = errors.New("доступ к хранилищу запрещен")

	ErrUnknownGroup        = errors.New("неизвестная группа настроек")
	ErrUnknownSettingKey   = errors.New("ключ не принадлежит группе")
	ErrSettingValueTooLong = errors.New("значение слишком длинное")
	ErrSettingsNotFound    = errors.New("настройки не найдены")
)

// Виды ошибок сжатия документа
var (
	ErrMalformedDocument      = errors.New("документ не удалось разобрать как PDF")
	ErrExternalToolFailure    = errors.New("ошибка внешнего инструмента")
	ErrScratchResourceFailure = errors.New("ошибка работы с временными файлами")
)

// CompressionError ошибка сжатия с контекстом: вид, уровень и исходный размер
type CompressionError struct {
	Kind         error
	Tier         Tier
	OriginalSize int
	Err          error
}

// NewCompressionError создает ошибку сжатия заданного вида
func NewCompressionError(kind error, tier Tier, originalSize int, err error) *CompressionError {
	return &CompressionError{Kind: kind, Tier: tier, OriginalSize: originalSize, Err: err}
}

func (e *CompressionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (уровень %s, размер %d байт)", e.Kind, e.Tier, e.OriginalSize)
	}
	return fmt.Sprintf("%v (уровень %s, размер %d байт): %v", e.Kind, e.Tier, e.OriginalSize, e.Err)
}

// Unwrap позволяет errors.Is находить как вид ошибки, так и исходную причину
func (e *CompressionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsTransient сообщает, имеет ли смысл повторить попытку.
// Неразбираемый документ не исправится от повтора.
func (e *CompressionError) IsTransient() bool {
	return errors.Is(e.Kind, ErrExternalToolFailure) || errors.Is(e.Kind, ErrScratchResourceFailure)
}

// CompressionErrorKind возвращает короткое имя вида ошибки для логов и метрик
func CompressionErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrExternalToolFailure):
		return "external_tool_failure"
	case errors.Is(err, ErrScratchResourceFailure):
		return "scratch_resource_failure"
	default:
		return "error"
	}
}

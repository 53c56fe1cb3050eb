package entities

// Quality имя пресета Ghostscript (-dPDFSETTINGS)
type Quality string

const (
	QualityScreen   Quality = "screen"
	QualityEbook    Quality = "ebook"
	QualityPrinter  Quality = "printer"
	QualityPrepress Quality = "prepress"

	DefaultQuality = QualityEbook
)

// KnownQualities возвращает список распознаваемых пресетов
func KnownQualities() []Quality {
	return []Quality{QualityScreen, QualityEbook, QualityPrinter, QualityPrepress}
}

// IsKnown проверяет, является ли пресет одним из стандартных.
// Неизвестные значения не отклоняются: они передаются внешнему инструменту как есть.
func (q Quality) IsKnown() bool {
	for _, known := range KnownQualities() {
		if q == known {
			return true
		}
	}
	return false
}

// OrDefault возвращает пресет по умолчанию для пустого значения
func (q Quality) OrDefault() Quality {
	if q == "" {
		return DefaultQuality
	}
	return q
}

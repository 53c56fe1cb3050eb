package entities

// Пороги уровней сжатия в байтах. Значения фиксированы и не настраиваются.
const (
	SkipThreshold  = 100 * 1024  // до 100 KiB включительно документ не трогаем
	LightThreshold = 1000 * 1024 // до 1000 KiB включительно только структурная перезапись
)

// Tier уровень сжатия, выбираемый по размеру входного документа
type Tier int

const (
	TierSkip Tier = iota
	TierLight
	TierHeavy
)

// ClassifyTier определяет уровень сжатия по длине данных
func ClassifyTier(size int) Tier {
	switch {
	case size <= SkipThreshold:
		return TierSkip
	case size <= LightThreshold:
		return TierLight
	default:
		return TierHeavy
	}
}

func (t Tier) String() string {
	switch t {
	case TierSkip:
		return "skip"
	case TierLight:
		return "light"
	case TierHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// PickSmaller возвращает кандидата, только если он строго меньше оригинала
func PickSmaller(candidate, original []byte) []byte {
	if len(candidate) < len(original) {
		return candidate
	}
	return original
}

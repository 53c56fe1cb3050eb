package entities

import (
	"fmt"
	"unicode/utf8"
)

// MaxSettingValueLength максимальная длина значения настройки в символах
const MaxSettingValueLength = 99

// CredentialMetadata описание параметра группы без его значения
type CredentialMetadata struct {
	Group   string `json:"tipolval"`
	Descrip string `json:"descrip"`
	Detail  string `json:"detail"`
}

// UpdateCredentialResult результат обновления параметра
type UpdateCredentialResult struct {
	RowsAffected int64  `json:"rows_affected"`
	OK           bool   `json:"ok"`
	Code         int    `json:"code"`
	Message      string `json:"message"`
}

// NewUpdateCredentialResult формирует результат по числу измененных строк
func NewUpdateCredentialResult(rows int64) *UpdateCredentialResult {
	result := &UpdateCredentialResult{
		RowsAffected: rows,
		OK:           rows > 0,
		Code:         200,
		Message:      "Обновление выполнено",
	}
	if !result.OK {
		result.Message = "Ни одна запись не изменена"
	}
	return result
}

// ValidateSettingValue проверяет ограничение длины значения
func ValidateSettingValue(value string) error {
	if n := utf8.RuneCountInString(value); n > MaxSettingValueLength {
		return fmt.Errorf("%w: %d символов, максимум %d", ErrSettingValueTooLong, n, MaxSettingValueLength)
	}
	return nil
}

// AWSSettings параметры доступа к S3, прочитанные из группы AWS
type AWSSettings struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Prefix          string
}

// AWSSettingsFromValues собирает параметры AWS из отображения DESCRIP → CODLVAL.
// Отсутствие любого из обязательных значений является ошибкой.
func AWSSettingsFromValues(values map[string]string, keys AWSKeyNames) (*AWSSettings, error) {
	settings := &AWSSettings{
		AccessKeyID:     values[keys.Key],
		SecretAccessKey: values[keys.Secret],
		Region:          values[keys.Region],
		Bucket:          values[keys.Bucket],
		Prefix:          values[keys.S3Prefix],
	}

	var missing []string
	for _, field := range []struct{ name, value string }{
		{keys.Key, settings.AccessKeyID},
		{keys.Secret, settings.SecretAccessKey},
		{keys.Region, settings.Region},
		{keys.Bucket, settings.Bucket},
		{keys.S3Prefix, settings.Prefix},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: конфигурация AWS S3 неполная, отсутствуют %v", ErrStorageNotConfigured, missing)
	}
	return settings, nil
}

package storage

import (
	"context"
	"fmt"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// LvalStorageProvider открывает хранилище, выбранное в конфигурации.
// Для S3 учетные данные, bucket и префикс читаются из группы AWS таблицы LVAL.
type LvalStorageProvider struct {
	settings repositories.SettingsRepository
	storage  entities.StorageConfig
	lval     entities.LvalConfig
	logger   repositories.Logger
	newS3    func(*entities.AWSSettings) repositories.ObjectStorage
}

var _ repositories.StorageProvider = (*LvalStorageProvider)(nil)

// NewLvalStorageProvider создает провайдер хранилища
func NewLvalStorageProvider(
	settings repositories.SettingsRepository,
	storage entities.StorageConfig,
	lval entities.LvalConfig,
	logger repositories.Logger,
) *LvalStorageProvider {
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &LvalStorageProvider{
		settings: settings,
		storage:  storage,
		lval:     lval,
		logger:   logger,
		newS3: func(s *entities.AWSSettings) repositories.ObjectStorage {
			return NewS3Storage(s)
		},
	}
}

// WithS3Factory подменяет создание клиента S3
func (p *LvalStorageProvider) WithS3Factory(factory func(*entities.AWSSettings) repositories.ObjectStorage) *LvalStorageProvider {
	p.newS3 = factory
	return p
}

// Open возвращает хранилище и префикс ключей
func (p *LvalStorageProvider) Open(ctx context.Context) (repositories.ObjectStorage, string, error) {
	switch p.storage.Backend {
	case entities.StorageBackendFilesystem:
		fs, err := NewFilesystemStorage(p.storage.LocalDirectory)
		if err != nil {
			return nil, "", err
		}
		return fs, p.storage.LocalPrefix, nil

	case entities.StorageBackendS3:
		if p.settings == nil {
			return nil, "", fmt.Errorf("%w: база данных LVAL не подключена", entities.ErrStorageNotConfigured)
		}
		values, err := p.settings.LoadGroup(ctx, p.lval.AWSGroup)
		if err != nil {
			return nil, "", fmt.Errorf("ошибка чтения настроек AWS: %w", err)
		}
		creds, err := entities.AWSSettingsFromValues(values, p.lval.AWSKeys)
		if err != nil {
			return nil, "", err
		}
		p.logger.Debug("Хранилище S3: bucket %s, регион %s", creds.Bucket, creds.Region)
		return NewRetryingStorage(p.newS3(creds), p.storage.RetryAttempts, p.logger), creds.Prefix, nil

	default:
		return nil, "", fmt.Errorf("%w: неизвестный бэкенд %q", entities.ErrStorageNotConfigured, p.storage.Backend)
	}
}

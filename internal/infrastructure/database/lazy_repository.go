package database

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// LazyLvalRepository открывает базу данных при первом обращении к LVAL.
// Команды, не читающие настройки, не создают файл базы.
type LazyLvalRepository struct {
	cfg          entities.DatabaseConfig
	activeStatus string

	once sync.Once
	db   *gorm.DB
	repo *LvalRepository
	err  error
}

var _ repositories.SettingsRepository = (*LazyLvalRepository)(nil)

// NewLazyLvalRepository создает репозиторий без подключения к базе
func NewLazyLvalRepository(cfg entities.DatabaseConfig, activeStatus string) *LazyLvalRepository {
	return &LazyLvalRepository{cfg: cfg, activeStatus: activeStatus}
}

func (r *LazyLvalRepository) open() (*LvalRepository, error) {
	r.once.Do(func() {
		r.db, r.err = Open(r.cfg)
		if r.err == nil {
			r.repo = NewLvalRepository(r.db, r.activeStatus, r.cfg)
		}
	})
	return r.repo, r.err
}

// LoadGroup возвращает активные значения группы
func (r *LazyLvalRepository) LoadGroup(ctx context.Context, group string) (map[string]string, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}
	return repo.LoadGroup(ctx, group)
}

// ListGroup возвращает описания активных параметров группы
func (r *LazyLvalRepository) ListGroup(ctx context.Context, group string) ([]entities.CredentialMetadata, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}
	return repo.ListGroup(ctx, group)
}

// UpdateValue заменяет значение активного параметра
func (r *LazyLvalRepository) UpdateValue(ctx context.Context, group, descrip, value string) (int64, error) {
	repo, err := r.open()
	if err != nil {
		return 0, err
	}
	return repo.UpdateValue(ctx, group, descrip, value)
}

// Close закрывает соединение, если база была открыта.
// После Close база больше не открывается.
func (r *LazyLvalRepository) Close() error {
	r.once.Do(func() {})
	if r.db == nil {
		return nil
	}
	return Close(r.db)
}

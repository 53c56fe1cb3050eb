package database

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

const (
	defaultCacheSize = 16
	defaultCacheTTL  = 5 * time.Minute
)

// LvalRepository чтение и обновление таблицы LVAL.
// Значения групп кэшируются до истечения TTL или до обновления группы.
type LvalRepository struct {
	db           *gorm.DB
	activeStatus string
	cache        *expirable.LRU[string, map[string]string]
}

var _ repositories.SettingsRepository = (*LvalRepository)(nil)

// NewLvalRepository создает репозиторий LVAL
func NewLvalRepository(db *gorm.DB, activeStatus string, cfg entities.DatabaseConfig) *LvalRepository {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if activeStatus == "" {
		activeStatus = "ACT"
	}

	return &LvalRepository{
		db:           db,
		activeStatus: activeStatus,
		cache:        expirable.NewLRU[string, map[string]string](size, nil, ttl),
	}
}

// LoadGroup возвращает активные значения группы в виде DESCRIP → CODLVAL
func (r *LvalRepository) LoadGroup(ctx context.Context, group string) (map[string]string, error) {
	if cached, ok := r.cache.Get(group); ok {
		return maps.Clone(cached), nil
	}

	var rows []Lval
	err := r.db.WithContext(ctx).
		Select("DESCRIP", "CODLVAL").
		Where("TIPOLVAL = ? AND STSLVAL = ?", group, r.activeStatus).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения группы %s: %w", group, err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Descrip] = row.CodLval
	}

	r.cache.Add(group, values)
	return maps.Clone(values), nil
}

// ListGroup возвращает описания активных параметров группы без значений
func (r *LvalRepository) ListGroup(ctx context.Context, group string) ([]entities.CredentialMetadata, error) {
	var rows []Lval
	err := r.db.WithContext(ctx).
		Select("DESCRIP", "DESCLONG").
		Where("TIPOLVAL = ? AND STSLVAL = ?", group, r.activeStatus).
		Order("DESCRIP").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения группы %s: %w", group, err)
	}

	out := make([]entities.CredentialMetadata, 0, len(rows))
	for _, row := range rows {
		out = append(out, entities.CredentialMetadata{
			Group:   group,
			Descrip: row.Descrip,
			Detail:  row.DescLong,
		})
	}
	return out, nil
}

// UpdateValue заменяет значение активного параметра и сбрасывает кэш группы
func (r *LvalRepository) UpdateValue(ctx context.Context, group, descrip, value string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Lval{}).
		Where("TIPOLVAL = ? AND DESCRIP = ? AND STSLVAL = ?", group, descrip, r.activeStatus).
		Update("CODLVAL", value)
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка обновления %s/%s: %w", group, descrip, result.Error)
	}

	r.cache.Remove(group)
	return result.RowsAffected, nil
}

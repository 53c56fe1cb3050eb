package usecases

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// ManageCredentialsUseCase просмотр и изменение учетных данных в таблице LVAL
type ManageCredentialsUseCase struct {
	settings repositories.SettingsRepository
	groups   map[string][]string
	logger   repositories.Logger
}

// NewManageCredentialsUseCase создает сценарий управления учетными данными
func NewManageCredentialsUseCase(settings repositories.SettingsRepository, lval entities.LvalConfig, logger repositories.Logger) *ManageCredentialsUseCase {
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &ManageCredentialsUseCase{
		settings: settings,
		groups:   lval.Groups(),
		logger:   logger,
	}
}

// Groups возвращает имена известных групп в алфавитном порядке
func (uc *ManageCredentialsUseCase) Groups() []string {
	names := make([]string, 0, len(uc.groups))
	for name := range uc.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List возвращает описание активных параметров группы без значений
func (uc *ManageCredentialsUseCase) List(ctx context.Context, group string) ([]entities.CredentialMetadata, error) {
	if _, ok := uc.groups[group]; !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownGroup, group)
	}
	return uc.settings.ListGroup(ctx, group)
}

// Update меняет значение параметра группы
func (uc *ManageCredentialsUseCase) Update(ctx context.Context, group, key, value string) (*entities.UpdateCredentialResult, error) {
	keys, ok := uc.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownGroup, group)
	}
	if !slices.Contains(keys, key) {
		return nil, fmt.Errorf("%w: %q не входит в %s, допустимы %v", entities.ErrUnknownSettingKey, key, group, keys)
	}
	if err := entities.ValidateSettingValue(value); err != nil {
		return nil, err
	}

	rows, err := uc.settings.UpdateValue(ctx, group, key, value)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления %s/%s: %w", group, key, err)
	}

	result := entities.NewUpdateCredentialResult(rows)
	if result.OK {
		uc.logger.Success("Параметр %s/%s обновлен", group, key)
	} else {
		uc.logger.Warning("Параметр %s/%s не найден среди активных записей", group, key)
	}
	return result, nil
}

package storage

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// RetryingStorage повторяет загрузку при временных ошибках хранилища
type RetryingStorage struct {
	delegate     repositories.ObjectStorage
	buildBackoff func() backoff.BackOff
	logger       repositories.Logger
}

var _ repositories.ObjectStorage = (*RetryingStorage)(nil)

// NewRetryingStorage оборачивает хранилище. attempts ограничивает общее число попыток.
func NewRetryingStorage(delegate repositories.ObjectStorage, attempts int, logger repositories.Logger) *RetryingStorage {
	if attempts < 1 {
		attempts = 1
	}
	factory := func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxElapsedTime = 10 * time.Second
		return backoff.WithMaxRetries(b, uint64(attempts-1))
	}
	return NewRetryingStorageWithBackoff(delegate, factory, logger)
}

// NewRetryingStorageWithBackoff оборачивает хранилище с заданной политикой повторов
func NewRetryingStorageWithBackoff(delegate repositories.ObjectStorage, factory func() backoff.BackOff, logger repositories.Logger) *RetryingStorage {
	if logger == nil {
		logger = repositories.NopLogger{}
	}
	return &RetryingStorage{delegate: delegate, buildBackoff: factory, logger: logger}
}

// Put загружает объект с повторами. Отсутствующий bucket и отказ в доступе не повторяются.
func (r *RetryingStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	var uri string
	attempt := 0
	op := func() error {
		attempt++
		var err error
		uri, err = r.delegate.Put(ctx, key, data, contentType)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		r.logger.Warning("Попытка %d загрузки %s не удалась: %v", attempt, key, err)
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(r.buildBackoff(), ctx)); err != nil {
		return "", err
	}
	return uri, nil
}

func isPermanent(err error) bool {
	return errors.Is(err, entities.ErrBucketNotFound) ||
		errors.Is(err, entities.ErrStorageAccessDenied) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

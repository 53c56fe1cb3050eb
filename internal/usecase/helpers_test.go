package usecases_test

import (
	"context"
	"sync"

	"mailbridge/internal/domain/entities"
	"mailbridge/internal/domain/repositories"
)

// scriptedCompressor возвращает заранее заданные ошибки, затем урезает данные на shrinkBy байт
type scriptedCompressor struct {
	mu        sync.Mutex
	errs      []error
	shrinkBy  int
	calls     int
	qualities []entities.Quality
}

func (c *scriptedCompressor) Compress(_ context.Context, data []byte, quality entities.Quality) ([]byte, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.qualities = append(c.qualities, quality)
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, 0, err
		}
	}
	n := len(data) - c.shrinkBy
	if n < 0 || c.shrinkBy == 0 {
		return data, len(data), nil
	}
	out := append([]byte(nil), data[:n]...)
	return out, n, nil
}

type memoryStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
	err          error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return "mem://bucket/" + key, nil
}

type staticProvider struct {
	store  repositories.ObjectStorage
	prefix string
	err    error
}

func (p staticProvider) Open(context.Context) (repositories.ObjectStorage, string, error) {
	return p.store, p.prefix, p.err
}

type memorySettings struct {
	rows    map[string]map[string]string
	updates int
}

func (m *memorySettings) LoadGroup(_ context.Context, group string) (map[string]string, error) {
	return m.rows[group], nil
}

func (m *memorySettings) ListGroup(_ context.Context, group string) ([]entities.CredentialMetadata, error) {
	var out []entities.CredentialMetadata
	for descrip := range m.rows[group] {
		out = append(out, entities.CredentialMetadata{Group: group, Descrip: descrip, Detail: "описание " + descrip})
	}
	return out, nil
}

func (m *memorySettings) UpdateValue(_ context.Context, group, descrip, value string) (int64, error) {
	m.updates++
	values, ok := m.rows[group]
	if !ok {
		return 0, nil
	}
	if _, ok := values[descrip]; !ok {
		return 0, nil
	}
	values[descrip] = value
	return 1, nil
}

func transientError(size int) error {
	return entities.NewCompressionError(entities.ErrExternalToolFailure, entities.TierHeavy, size, context.DeadlineExceeded)
}

func malformedError(size int) error {
	return entities.NewCompressionError(entities.ErrMalformedDocument, entities.TierLight, size, nil)
}

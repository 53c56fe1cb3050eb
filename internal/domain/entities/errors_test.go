package entities_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailbridge/internal/domain/entities"
)

func TestCompressionError_Is(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("upload: %w", entities.NewCompressionError(entities.ErrExternalToolFailure, entities.TierHeavy, 2_000_000, cause))

	assert.ErrorIs(t, err, entities.ErrExternalToolFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, entities.ErrMalformedDocument)

	var ce *entities.CompressionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, entities.TierHeavy, ce.Tier)
	assert.Equal(t, 2_000_000, ce.OriginalSize)
	assert.Contains(t, err.Error(), "heavy")
	assert.Contains(t, err.Error(), "2000000")
}

func TestCompressionError_IsTransient(t *testing.T) {
	tests := []struct {
		kind error
		want bool
	}{
		{entities.ErrMalformedDocument, false},
		{entities.ErrExternalToolFailure, true},
		{entities.ErrScratchResourceFailure, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			err := entities.NewCompressionError(tt.kind, entities.TierLight, 1, nil)
			assert.Equal(t, tt.want, err.IsTransient())
		})
	}
}

func TestCompressionErrorKind(t *testing.T) {
	assert.Equal(t, "", entities.CompressionErrorKind(nil))
	assert.Equal(t, "malformed_document",
		entities.CompressionErrorKind(entities.NewCompressionError(entities.ErrMalformedDocument, entities.TierLight, 1, nil)))
	assert.Equal(t, "external_tool_failure",
		entities.CompressionErrorKind(entities.NewCompressionError(entities.ErrExternalToolFailure, entities.TierHeavy, 1, nil)))
	assert.Equal(t, "scratch_resource_failure",
		entities.CompressionErrorKind(entities.NewCompressionError(entities.ErrScratchResourceFailure, entities.TierHeavy, 1, nil)))
	assert.Equal(t, "error", entities.CompressionErrorKind(errors.New("boom")))
}

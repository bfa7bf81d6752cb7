package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrEmbeddingFailed", ErrEmbeddingFailed},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrModelMismatch", ErrModelMismatch},
		{"ErrIndexInconsistency", ErrIndexInconsistency},
		{"ErrGenerationFailed", ErrGenerationFailed},
		{"ErrGenerationTimeout", ErrGenerationTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("search index: %w", ErrIndexInconsistency)

	assert.True(t, errors.Is(wrapped, ErrIndexInconsistency))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

// Timeout and failure must stay distinguishable for callers.
func TestErrors_GenerationKindsDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrGenerationTimeout, ErrGenerationFailed))
	assert.False(t, errors.Is(ErrGenerationFailed, ErrGenerationTimeout))
}

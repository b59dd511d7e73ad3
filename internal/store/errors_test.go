package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateNotFoundIsNotFound(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrTemplateNotFound, ErrNotFound,
		"the template sentinel should match the generic not-found sentinel")
	assert.True(t, IsNotFoundError(ErrTemplateNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("loading: %w", ErrTemplateNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("boom")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	underlying := errors.New("connection refused")
	err := NewStoreError("template", "create", "insert failed", underlying)

	assert.Contains(t, err.Error(), "create")
	assert.Contains(t, err.Error(), "template")
	assert.Contains(t, err.Error(), "insert failed")
	assert.ErrorIs(t, err, underlying, "StoreError should unwrap to the original error")

	bare := NewStoreError("template", "delete", "gone", nil)
	assert.Contains(t, bare.Error(), "delete")
	assert.Nil(t, errors.Unwrap(bare))
}

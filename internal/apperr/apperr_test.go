package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", Wrap(KindNotFound, "missing", base))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, KindInternal, KindOf(base))
	assert.False(t, Is(nil, KindInternal))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindInternal, "nothing", nil))
}

func TestValidationFields(t *testing.T) {
	err := Validation("Validation failed", "name is required", "email is invalid")
	assert.Equal(t, KindValidation, err.Kind)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, "ValidationError: Validation failed", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DuplicateSlot", KindDuplicateSlot.String())
	assert.Equal(t, "UnsupportedMediaType", KindUnsupportedMedia.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

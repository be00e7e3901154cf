package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesOriginalCode(t *testing.T) {
	err := Clone(ErrConflict, "a record already exists for this date")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "a record already exists for this date", err.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", Validation("produto is required"))
	assert.True(t, errors.Is(wrapped, ErrValidation))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}

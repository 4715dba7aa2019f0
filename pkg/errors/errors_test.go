package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("disk full"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "disk full")
}

func TestFromErrorKeepsTyped(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrInvalidMeetingID)
	assert.Same(t, ErrInvalidMeetingID, FromError(wrapped))
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrValidation, "day out of range")
	assert.Equal(t, "day out of range", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.False(t, errors.Is(clone, ErrNotFound))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "store read failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store read failed: timeout", err.Error())
}

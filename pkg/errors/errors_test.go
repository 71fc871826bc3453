package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrValidation, "interval must be at least 1"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "interval must be at least 1", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("disk on fire"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}

func TestIsComparesCodes(t *testing.T) {
	err := Wrap(errors.New("redis: nil"), ErrSnapshotMissing.Code, ErrSnapshotMissing.Status, "no snapshot")
	assert.True(t, Is(err, ErrSnapshotMissing))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(errors.New("plain"), ErrSnapshotMissing))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "event not found")
	assert.Equal(t, "event not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

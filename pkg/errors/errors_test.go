package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "persistence failure")
	assert.Contains(t, err.Error(), "disk full")
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("saving: %w", Persistence(errors.New("disk full")))

	assert.True(t, IsCode(err, ErrPersistence))
	assert.False(t, IsCode(err, ErrNotFound))
	assert.False(t, IsCode(errors.New("plain"), ErrPersistence))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("patient", nil)
	assert.Equal(t, "patient not found", err.Error())
}

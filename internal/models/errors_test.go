package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := NewNotFoundError("Customer", "IM-10001")
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeValidation))

	// Wrapped AppErrors still match.
	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsCode(wrapped, CodeNotFound))

	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
	assert.False(t, IsCode(nil, CodeNotFound))
}

func TestStatusForError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Customer", "x"), fiber.StatusNotFound},
		{NewValidationError("bad input"), fiber.StatusBadRequest},
		{NewConflictError("lost the race"), fiber.StatusConflict},
		{NewTransientError("storage unavailable", errors.New("timeout")), fiber.StatusServiceUnavailable},
		{NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("untyped"), fiber.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusForError(c.err), c.err.Error())
	}
}

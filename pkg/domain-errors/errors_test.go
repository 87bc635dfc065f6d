package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("db down")
	err := Wrap(base, CodeInternal, "failed to load user")

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to load user: db down", err.Error())

	wrapped := fmt.Errorf("handler: %w", New(CodeNotFound, "wizard not found"))
	assert.True(t, Is(wrapped, CodeNotFound))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodedErrors(t *testing.T) {
	t.Run("New carries code and message", func(t *testing.T) {
		err := New(CodeConflict, "title already in use")
		assert.Equal(t, "title already in use", err.Error())
		assert.True(t, Is(err, CodeConflict))
		assert.False(t, Is(err, CodeNotFound))
	})

	t.Run("Wrap preserves the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "load ranking")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "load ranking: connection reset", err.Error())
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("Is sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeForbidden, "not the owner"))
		assert.True(t, Is(err, CodeForbidden))
		assert.True(t, HasCode(err, CodeForbidden))
	})

	t.Run("CodeOf defaults to internal for foreign errors", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}

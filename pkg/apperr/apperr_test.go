package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, CodeNotFound, Code(New(CodeNotFound, "room gone")))
	assert.Equal(t, CodePersistence, Code(errors.New("plain error")))
}

func TestCode_SurvivesWrapping(t *testing.T) {
	inner := Newf(CodeAlreadyStarted, "room %s has already started", "12345")
	wrapped := fmt.Errorf("join failed: %w", inner)

	assert.Equal(t, CodeAlreadyStarted, Code(wrapped))
	assert.True(t, Is(wrapped, CodeAlreadyStarted))
	assert.False(t, Is(wrapped, CodeNotFound))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodePersistence, "failed to load room")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PERSISTENCE")
	assert.Contains(t, err.Error(), "connection reset")
}

package entities

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("robot").Valid())
	assert.False(t, Role("").Valid())
}

func TestProviderErrorMessageHidesBody(t *testing.T) {
	err := &ProviderError{StatusCode: 429, Body: "secret payload"}
	assert.NotContains(t, err.Error(), "secret payload")
	assert.Contains(t, err.Error(), "429")
}

func TestIsProviderError(t *testing.T) {
	err := fmt.Errorf("calling provider: %w", &ProviderError{StatusCode: 500})
	assert.True(t, IsProviderError(err))
	assert.False(t, IsProviderError(errors.New("plain")))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.False(t, IsTimeout(errors.New("plain")))
	assert.False(t, IsTimeout(context.Canceled))
}

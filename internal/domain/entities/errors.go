package entities

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyMessage is returned when a chat request carries no user message.
var ErrEmptyMessage = errors.New("message must not be empty")

// ErrInvalidRole is returned when history contains an unknown role.
var ErrInvalidRole = errors.New("history contains an invalid role")

// ProviderError means the LLM provider answered with a non-success status.
// The raw body is kept for logging only and must never reach API clients.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider returned status %d", e.StatusCode)
}

// IsProviderError reports whether err wraps a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsTimeout reports whether err is a deadline/timeout failure, either from
// the request context or from the HTTP client transport.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

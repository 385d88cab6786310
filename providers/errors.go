package providers

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a successful HTTP exchange whose payload has no
// usable reply.
var ErrMalformedResponse = errors.New("malformed response")

// UnknownProviderError is returned when a provider name is not registered.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q", e.Name)
}

// DiscoveryError is returned when a model listing cannot be fetched or
// parsed. Status is the HTTP status, or 0 when no response was received.
type DiscoveryError struct {
	Status int
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("models API returned %d", e.Status)
	}
	return fmt.Sprintf("model discovery failed: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// StatusError is returned by transports for non-2xx responses. Message is
// the provider's error message when the body carried one, otherwise a
// generic status description.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

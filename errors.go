package ferrochat

import (
	"errors"
	"fmt"
	"time"

	"github.com/ferro-labs/ferrochat/internal/settings"
	"github.com/ferro-labs/ferrochat/providers"
)

// Errors re-exported from the packages that produce them.
type (
	// UnknownProviderError is returned when a provider name is not registered.
	UnknownProviderError = providers.UnknownProviderError
	// DiscoveryError is returned when a model listing cannot be fetched.
	DiscoveryError = providers.DiscoveryError
)

// Validation sentinels reported by SetAPIConfig's validation step.
var (
	ErrInvalidProvider = settings.ErrInvalidProvider
	ErrInvalidModel    = settings.ErrInvalidModel
)

// ConfigurationError reports a missing or invalid provider, model or key.
// It is detected before any network call is made.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthError is returned for a 401 response.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "invalid or expired API key, check your configuration"
}

// EndpointNotFoundError is returned for a 404 response.
type EndpointNotFoundError struct {
	Message string
}

func (e *EndpointNotFoundError) Error() string {
	return "API endpoint not found, check the provider URL"
}

// RateLimitError is returned for a 429 response.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "too many requests, please try again later"
}

// APIError is returned for any other failed exchange. Status is 0 when no
// response was received.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// TimeoutError is returned when a chat request exceeds the client timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %ds, please try again later", int(e.Timeout/time.Second))
}

// MalformedResponseError is returned when a successful response carries no
// usable reply.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid API response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// classify maps a transport failure to the error taxonomy.
func classify(err error, timedOut bool, timeout time.Duration) error {
	if timedOut {
		return &TimeoutError{Timeout: timeout}
	}

	var se *providers.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 401:
			return &AuthError{Message: se.Message}
		case 404:
			return &EndpointNotFoundError{Message: se.Message}
		case 429:
			return &RateLimitError{Message: se.Message}
		default:
			return &APIError{Status: se.StatusCode, Message: se.Message}
		}
	}

	if errors.Is(err, providers.ErrMalformedResponse) {
		return &MalformedResponseError{Err: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = "request failed"
	}
	return &APIError{Message: msg}
}

// errorType returns a short label for metrics.
func errorType(err error) string {
	var (
		cfgErr  *ConfigurationError
		authErr *AuthError
		nfErr   *EndpointNotFoundError
		rlErr   *RateLimitError
		toErr   *TimeoutError
		mrErr   *MalformedResponseError
		apiErr  *APIError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &nfErr):
		return "not_found"
	case errors.As(err, &rlErr):
		return "rate_limit"
	case errors.As(err, &toErr):
		return "timeout"
	case errors.As(err, &mrErr):
		return "malformed"
	case errors.As(err, &apiErr) && apiErr.Status == 0:
		return "transport"
	default:
		return "api"
	}
}

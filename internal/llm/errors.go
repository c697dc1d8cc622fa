package llm

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/promptforge/internal/provider"
)

// ErrEmptyResponse indicates the provider responded successfully but no
// usable text could be extracted from the response body.
var ErrEmptyResponse = errors.New("provider returned no usable text")

// AuthError indicates the provider rejected the API key.
type AuthError struct {
	Provider   provider.ID
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s rejected the API key (status %d)", e.Provider, e.StatusCode)
}

// RequestError carries the provider's status and raw error body for any
// non-success response that is not an authentication failure.
type RequestError struct {
	Provider   provider.ID
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// statusError maps a non-2xx HTTP status to the typed error taxonomy.
func statusError(id provider.ID, status int, body string) error {
	if status == 401 || status == 403 {
		return &AuthError{Provider: id, StatusCode: status}
	}
	return &RequestError{Provider: id, StatusCode: status, Body: body}
}

package parble

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// kindError is a sentinel that chains to its parent category so errors.Is
// matches every level of the taxonomy.
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.parent }

// Error categories returned by the SDK
var (
	// ErrParble is the root of every error produced by this package
	ErrParble = errors.New("parble error")

	// ErrConfiguration indicates missing or invalid settings
	ErrConfiguration = &kindError{msg: "configuration error", parent: ErrParble}
	// ErrInvalidPayload indicates a server payload that does not match the File model
	ErrInvalidPayload = &kindError{msg: "invalid payload", parent: ErrParble}

	// ErrAPICall indicates a failed API call (HTTP 500, unmapped status or transport failure)
	ErrAPICall = &kindError{msg: "api call failed", parent: ErrParble}
	// ErrNotFound indicates an HTTP 404
	ErrNotFound = &kindError{msg: "not found", parent: ErrAPICall}
	// ErrUnauthorized indicates an HTTP 401
	ErrUnauthorized = &kindError{msg: "unauthorized", parent: ErrAPICall}
	// ErrCallTimeout indicates the request exceeded its timeout
	ErrCallTimeout = &kindError{msg: "call timed out", parent: ErrAPICall}
	// ErrInvalidCall indicates an HTTP 400 or a request rejected before being sent
	ErrInvalidCall = &kindError{msg: "invalid call", parent: ErrAPICall}
)

// statusKinds maps HTTP status codes to error categories. Unmapped codes use ErrAPICall.
var statusKinds = map[int]error{
	http.StatusBadRequest:          ErrInvalidCall,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusNotFound:            ErrNotFound,
	http.StatusInternalServerError: ErrAPICall,
}

// kindForStatus returns the error category of an HTTP status code
func kindForStatus(code int) error {
	if kind, ok := statusKinds[code]; ok {
		return kind
	}
	return ErrAPICall
}

// ConfigurationError lists every setting that is missing or invalid
type ConfigurationError struct {
	Fields []string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid or missing settings: %s", ErrConfiguration, strings.Join(e.Fields, " "))
}

// Unwrap returns ErrConfiguration
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// APIError represents a failed Parble API call
type APIError struct {
	Kind       error
	StatusCode int // 0 when no response was received
	Method     string
	URL        string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Method != "" {
		fmt.Fprintf(&b, ": %s %s", e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
		if e.Body != "" {
			fmt.Fprintf(&b, ": %s", e.Body)
		}
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the category and the underlying cause
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusError is the cause of an APIError built from a non-2xx response
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return "unexpected status " + e.Status
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return errors.Is(e.Kind, ErrNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return errors.Is(e.Kind, ErrUnauthorized)
}

// IsTimeout checks if the error indicates the call timed out
func (e *APIError) IsTimeout() bool {
	return errors.Is(e.Kind, ErrCallTimeout)
}

// ValidationError reports a File payload rejected by the schema or the decoder
type ValidationError struct {
	Err error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidPayload, e.Err)
}

// Unwrap returns both the category and the cause
func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidPayload, e.Err}
}

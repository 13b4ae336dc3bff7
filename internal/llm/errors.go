package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is returned when an embedding or generation call fails.
// Transient errors (network, rate limit, upstream 5xx) may be retried;
// permanent errors (auth, malformed request) must not be.
type ProviderError struct {
	Op        string // "embed" or "generate"
	Status    int    // HTTP status code, 0 for transport failures
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s provider error (status %d): %v", e.Op, kind, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable provider error.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// IsPermanent reports whether err is a provider error that must not be retried.
func IsPermanent(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && !pe.Transient
}

// classifyStatus maps an HTTP status code to transient/permanent.
// Rate limits and server errors are retryable; client errors are not.
func classifyStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= 500
}

// transportError wraps a failed round trip as a transient provider error.
func transportError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Status: 0, Transient: true, Err: err}
}

// statusError wraps a non-200 response as a classified provider error.
func statusError(op string, status int, body string) *ProviderError {
	return &ProviderError{
		Op:        op,
		Status:    status,
		Transient: classifyStatus(status),
		Err:       fmt.Errorf("bad status %d: %s", status, body),
	}
}

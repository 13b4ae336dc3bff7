package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned when a tenant name fails validation.
	ErrInvalidName = errors.New("invalid tenant name")
	// ErrTenantNotFound is returned when an unknown tenant is referenced.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantDeleted is returned when an operation uses a handle whose
	// tenant has been deleted. Operations are rejected, never redirected.
	ErrTenantDeleted = errors.New("tenant deleted")
)

// StorageError wraps a fatal namespace failure for one tenant. The tenant
// must be reported as degraded, never silently treated as empty.
type StorageError struct {
	Tenant string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("tenant %s storage error: %v", e.Tenant, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

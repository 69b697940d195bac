package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the path does not carry the zip
	// container extension.
	ErrUnsupportedFormat = errors.New("unsupported container format")

	// ErrNotFound is returned when a read-only open targets a missing container.
	ErrNotFound = errors.New("container not found")

	// ErrInvalidOperation is returned when an operation does not match the
	// capability of the archive or entry it was called on.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidArgument is returned for unknown backends, access modes,
	// compression settings and empty keys.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UnsupportedBackendError is returned when a backend is not registered.
type UnsupportedBackendError struct {
	Backend   Backend   // the requested backend
	Available []Backend // registered backends
}

func (e *UnsupportedBackendError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported backend %q: no backends registered", e.Backend)
	}
	return fmt.Sprintf("unsupported backend %q (available: %v)", e.Backend, e.Available)
}

func (e *UnsupportedBackendError) Unwrap() error {
	return ErrInvalidArgument
}

func invalidOperation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

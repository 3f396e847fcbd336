package compose

import (
	"errors"
	"fmt"
)

// Descriptor errors. Every validation failure wraps one of these so callers
// can match with errors.Is.
var (
	// ErrInvalidDescriptor indicates a document that is not a mapping of
	// services to flat configuration values.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrInvalidPortBinding indicates a ports entry with a host port or host ip.
	ErrInvalidPortBinding = errors.New("explicit port binding")

	// ErrInvalidVolumeBinding indicates a volumes entry already bound to a host path.
	ErrInvalidVolumeBinding = errors.New("volume binding")

	// ErrUnresolvableDependency indicates a dependency outside the project.
	ErrUnresolvableDependency = errors.New("depends on external containers")

	// ErrConflictingImageSource indicates a service without exactly one of image or build.
	ErrConflictingImageSource = errors.New("conflicting image source")
)

// ServiceError reports a failure attributed to a single service.
type ServiceError struct {
	Service string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %q: %v", e.Service, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps sentinel with a formatted detail message for service.
func NewServiceError(service string, sentinel error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return &ServiceError{
		Service: service,
		Err:     fmt.Errorf("%w: %s", sentinel, detail),
	}
}

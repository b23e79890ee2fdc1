package domain

import (
	"errors"
	"fmt"

	"github.com/samirrijal/mapbridge/internal/pkg/geospatial"
)

var (
	// ErrProviderUnavailable means a provider failed to initialize. It is
	// permanent for the lifetime of that provider within a session.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnsupported means the active provider has no behavior for an operation.
	ErrUnsupported = errors.New("operation not supported by provider")

	// ErrOutOfProjectionRange is returned for latitudes beyond the Mercator limit.
	ErrOutOfProjectionRange = geospatial.ErrOutOfProjectionRange

	ErrInvalidBoundingBox = errors.New("invalid bounding box")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrDuplicateEntity    = errors.New("entity already exists")

	// ErrEmptyExtent is returned when there is nothing to fit the view to.
	ErrEmptyExtent = errors.New("no entities to fit")
)

// UnsupportedError names the provider and operation that could not be served.
type UnsupportedError struct {
	Provider  ProviderID
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s does not support %s", ErrUnsupported, e.Provider, e.Operation)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

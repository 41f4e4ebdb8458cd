package catalog

import "errors"

// ErrUnknownEndpoint is matched by every UnknownEndpointError.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// UnknownEndpointError reports an identifier missing from the catalog.
type UnknownEndpointError struct {
	ID string
}

func (e *UnknownEndpointError) Error() string {
	return "unknown endpoint: " + e.ID
}

func (e *UnknownEndpointError) Is(target error) bool { return target == ErrUnknownEndpoint }

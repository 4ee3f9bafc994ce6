package domain

import "errors"

var (
	// ErrNotFound signals an unknown collection, index or nested route.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable signals that the document store could not answer
	// (connectivity loss, timeout, server error).
	ErrServiceUnavailable = errors.New("service unavailable")
)

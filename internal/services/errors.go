package services

import "errors"

var (
	// ErrStopNotFound is returned when a requested stop id is not in the pool.
	ErrStopNotFound = errors.New("stop not found")
	// ErrInvalidRequest is returned for requests that cannot describe a trip.
	ErrInvalidRequest = errors.New("invalid request")
)

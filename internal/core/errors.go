package core

import "errors"

var (
	// ErrGridNotFound is returned when a grid key is not registered.
	ErrGridNotFound = errors.New("grid not found")

	// ErrViewNotFound is returned for unknown or expired view ids.
	ErrViewNotFound = errors.New("view not found")

	// ErrUnknownAction is returned when a bulk action name is not registered.
	ErrUnknownAction = errors.New("unknown bulk action")

	// ErrReadOnlySource is returned when a grid's source cannot delete rows.
	ErrReadOnlySource = errors.New("source is read-only")

	// ErrTooManyViews is returned when the open view limit is reached.
	ErrTooManyViews = errors.New("too many open views")
)

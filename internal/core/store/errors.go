package store

import "errors"

var (
	// Entity errors

	ErrEntityNotFound = errors.New("entity not found")

	// Component errors

	ErrUnknownComponent   = errors.New("component type not registered")
	ErrComponentNotFound  = errors.New("component not present on entity")
	ErrDuplicateComponent = errors.New("component listed twice")
	ErrUnknownStorage     = errors.New("unknown storage type")
)

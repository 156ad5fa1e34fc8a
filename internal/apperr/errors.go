// Package apperr defines sentinel errors shared across Algiz packages.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLayer = errors.New("invalid layer")
)

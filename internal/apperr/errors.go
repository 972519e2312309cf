// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("already exists")
	ErrDecode           = errors.New("content is not valid text")
	ErrMissingAttribute = errors.New("missing required attribute")
	ErrNoVault          = errors.New("no vault open")
)

package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
)

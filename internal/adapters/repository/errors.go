package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStorage         = errors.New("storage error")
	ErrInvalidCategory = errors.New("invalid category")
)

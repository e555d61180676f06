package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
	ErrNotStarted = errors.New("service not started")
)

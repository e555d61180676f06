package model

import "errors"

// ErrValidation marks caller input that violates an event invariant.
var ErrValidation = errors.New("validation error")

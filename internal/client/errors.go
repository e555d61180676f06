package client

import (
	"errors"
	"fmt"
)

// Sentinel kinds for client errors.
var (
	ErrRequest       = errors.New("request failed")
	ErrUnsorted      = errors.New("leaderboard not sorted")
	ErrInconsistent  = errors.New("team report inconsistent")
	ErrInvalidConfig = errors.New("invalid seed config")
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
}

package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("service unavailable")
	ErrNotFound        = errors.New("message not found")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrBadResponse     = errors.New("unexpected response from store")
)

// StatusError is a non-retryable HTTP failure other than not found.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

package upstream

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every failure of an upstream call: connection
// refused, timeout, non-2xx status or an undecodable body.
var ErrUnavailable = errors.New("upstream unavailable")

// Error describes a failed upstream call.
type Error struct {
	// Service is the upstream's name, e.g. "students".
	Service string

	// StatusCode is the HTTP status the upstream answered with, or 0 when no
	// response was received or it could not be decoded.
	StatusCode int

	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s service: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports true for ErrUnavailable so callers can test the category
// without caring about the details.
func (e *Error) Is(target error) bool {
	return target == ErrUnavailable
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}

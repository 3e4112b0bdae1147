package query

import (
	"errors"
	"fmt"
)

// NotFoundError signals that an identifier matched no record in the latest
// snapshot. It is the only failure the in-process service can surface.
type NotFoundError struct {
	Ident string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Flight %s not found in latest snapshot.", e.Ident)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// TransportError signals a fetch-layer failure reaching a remote query
// service: a timeout, a refused connection or an unexpected status. Callers
// must check for it before trusting flights/alerts data.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("query service %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

package clients

import (
	"errors"
	"fmt"
)

// NetworkError means the collaborator was unreachable or answered with a
// transport-level failure. Callers must never treat it as a business rejection.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: collaborator unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BusinessError means the collaborator explicitly rejected the request. The
// message is surfaced to the user verbatim.
type BusinessError struct {
	Op      string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsBusiness reports whether err is (or wraps) a BusinessError.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

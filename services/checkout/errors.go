package checkout

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable condition computed synchronously:
// a missing delivery date, a pickup at or before delivery, an incomplete
// address, a stock issue. It blocks the relevant transition and is never
// silently bypassed.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError attributed to a field or item.
func NewValidationError(field, msg string) error {
	return &ValidationError{
		Code:    "validationError",
		Field:   field,
		Message: msg,
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrSessionNotFound is returned when no checkout session exists for a user.
var ErrSessionNotFound = errors.New("checkout session not found")

// ErrSchemaVersion is returned when a persisted session was written by a
// different schema version. Loaders treat it as "no usable session".
var ErrSchemaVersion = errors.New("checkout session schema version is not supported")

// ErrOperationInFlight is returned when a step change is attempted while an
// intent-creation or payment-confirmation call is still running.
var ErrOperationInFlight = errors.New("a checkout operation is already in flight")

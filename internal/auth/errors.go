package auth

import (
	"errors"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrConnectivity         = errors.New("record store unreachable")
	ErrConnectivityRequired = errors.New("registration needs a connection to the server")
	ErrDuplicateIdentifier  = errors.New("identifier already registered")
	ErrNotFound             = errors.New("identifier not registered")
	ErrInvalidCredential    = errors.New("invalid credential")
	ErrUnexpected           = errors.New("unexpected error")
)

// ValidationError reports a form field that failed a local check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Outcome is a short label for err, used in metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.Is(err, ErrConnectivityRequired):
		return "connectivity_required"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	}
	return "unexpected"
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	switch Outcome(err) {
	case "ok":
		return ""
	case "connectivity":
		return "Cannot reach the server. Check your connection and try again."
	case "connectivity_required":
		return "Registration needs an internet connection. Please try again when online."
	case "duplicate":
		return "This identifier is already registered."
	case "not_found":
		return "This identifier is not registered."
	case "invalid_credential":
		return "Wrong password."
	}
	return "Something went wrong. Please try again."
}

package common

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., username already exists
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. builder backend down

	// ErrLoginFailed is the expected outcome of a wrong username or password.
	// Unlike ErrUnauthorized it is not an error page: the login form is
	// re-rendered with a failure flag.
	ErrLoginFailed = errors.New("login failed")

	// ErrNoRecognizedRole means an authenticated session carries none of the
	// known roles. That is a data inconsistency, not a client mistake, so it
	// surfaces as a server error rather than a redirect.
	ErrNoRecognizedRole = errors.New("user has no recognized roles")
)

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

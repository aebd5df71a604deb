package errs

import (
	"errors"
	"fmt"
)

// Application error codes. They form a closed set: every error that crosses the
// boundary of the action layer carries exactly one of them.
const (
	// ECONFLICT is returned when a write collides with existing data,
	// e.g. a second like for the same post and user.
	ECONFLICT = "conflict"
	// EINTERNAL is returned for storage failures and anything unexpected.
	EINTERNAL = "internal"
	// EINVALID is returned when incoming data fails validation.
	EINVALID = "invalid"
	// ENOTFOUND is returned when a resource cannot be found in the database.
	ENOTFOUND = "not_found"
	// EUNAUTHENTICATED is returned when an operation needs a signed in user
	// and the request carries none.
	EUNAUTHENTICATED = "unauthenticated"
	// EUNAUTHORIZED is returned when the acting user may not touch a resource.
	EUNAUTHORIZED = "unauthorized"
)

// Error represents an application-specific error. Code is meant for the program,
// Message for the end user. Err holds the underlying cause and is only ever logged.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface. The result includes the cause and is meant
// for logs, never for clients.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with the given code and message that keeps err as its cause.
func Wrap(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Mask keeps the code of err but replaces its user facing message.
// The action layer uses it to collapse every failure of a mutation into one fixed
// message while callers can still branch on the kind of failure.
func Mask(err error, message string) *Error {
	return &Error{
		Code:    ErrorCode(err),
		Message: message,
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

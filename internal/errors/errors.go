package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a universal error type that handlers return and the
// server turns into a response.
type Error struct {
	Status  int
	Err     error // The error this wraps
	Details []Detail
}

// Detail ties a message to a single form field.
type Detail struct {
	Field string
	Error string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s, details: %v", e.Status, e.Err, e.Details)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FieldErrors groups the details by field so templates can look them up.
func (e *Error) FieldErrors() map[string][]string {
	fields := make(map[string][]string, len(e.Details))
	for _, d := range e.Details {
		fields[d.Field] = append(fields[d.Field], d.Error)
	}

	return fields
}

// E builds an [Error] out of whatever it's handed: a string or error becomes
// the wrapped error, an int the status, and details get appended.
func E(args ...any) *Error {
	ret := &Error{
		Status:  http.StatusInternalServerError,
		Err:     nil,
		Details: nil,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case int:
			ret.Status = arg
		case Detail:
			ret.Details = append(ret.Details, arg)
		case []Detail:
			ret.Details = append(ret.Details, arg...)
		}
	}

	if ret.Err == nil {
		ret.Err = errors.New(http.StatusText(ret.Status))
	}

	return ret
}

// Status pulls the HTTP status out of err, defaulting to a 500 for anything
// that isn't an [Error].
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	return http.StatusInternalServerError
}

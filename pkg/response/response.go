package response

import (
	"errors"
)

// Error pairs an error message with the HTTP status it should be reported as.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Is matches on status and message, so a wrapped copy of a sentinel still
// compares equal to it.
func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// StatusOf returns the status and message of the first *Error in err's chain.
func StatusOf(err error) (int, string, bool) {
	var respErr *Error
	if !errors.As(err, &respErr) {
		return 0, "", false
	}
	return respErr.Code, respErr.Error(), true
}

// Package apierr is the error currency between the styling services and the
// HTTP layer: an HTTP status plus a stable machine code wrapped around the
// cause. Services decide the mapping (a foreign session is SESSION_NOT_FOUND,
// a bad outfit index is INVALID_OUTFIT_INDEX) so handlers never re-derive
// status codes from error text.
package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

// Error reports the underlying cause; the code and status are fallbacks so a
// logged *Error is never blank.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

// Unwrap exposes the cause to errors.Is, which is how handlers recognize
// sentinel conditions like a still-processing result.
func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

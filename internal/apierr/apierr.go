package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes surfaced in API responses.
const (
	CodeUnauthorized      = "unauthorized"
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
	CodeEngineUnavailable = "engine_unavailable"
	CodeEngineRejected    = "engine_rejected"
	CodeEngineTimeout     = "engine_timeout"
	CodePersistence       = "persistence_error"
	CodeCanceled          = "request_canceled"
	CodeInternal          = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

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

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func EngineUnavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeEngineUnavailable, err)
}

func EngineRejected(err error) *Error {
	return New(http.StatusBadGateway, CodeEngineRejected, err)
}

func EngineTimeout(err error) *Error {
	return New(http.StatusGatewayTimeout, CodeEngineTimeout, err)
}

func Persistence(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistence, err)
}

// Resolve pulls the typed error out of a wrap chain. Anything untyped is an
// internal error.
func Resolve(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

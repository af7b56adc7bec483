// Package apierr carries an HTTP status and a machine-readable code along with an error.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	sr "github.com/example/cardlearn/internal/spaced_repetition"
	"github.com/example/cardlearn/pkg/models"
)

const (
	CodeInvalidAction  = "invalid_action"
	CodeNotFound       = "not_found"
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeInternal       = "internal"
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

func InvalidRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

// From classifies err. Errors that are already *Error pass through; domain sentinels
// get their status; everything else is internal.
func From(err error) *Error {
	var apiErr *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, sr.ErrInvalidAction):
		return New(http.StatusBadRequest, CodeInvalidAction, err)
	case errors.Is(err, models.ErrNotFound):
		return New(http.StatusNotFound, CodeNotFound, err)
	default:
		return New(http.StatusInternalServerError, CodeInternal, err)
	}
}

package xerr

import (
	"errors"
	"fmt"
)

// CodeError is the error shape returned to callers. Reason carries a
// machine-readable detail (e.g. the rejected reading field).
type CodeError struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func (e *CodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Code: %d, Reason: %s, Message: %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// Is matches on Code so callers can compare against the predefined errors
// even when Reason or Message differ.
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

func WithReason(code int, reason, msg string) *CodeError {
	return &CodeError{Code: code, Reason: reason, Message: msg}
}

const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500

	InvalidReading      = 4001
	InvalidTransition   = 4091
	CapacityExceeded    = 4092
	SiloUnavailable     = 4093
	StaleAssessmentRace = 5031
)

var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "internal error, please contact support")
	ErrParam       = New(BadRequest, "invalid parameters")
	ErrForbidden   = New(Forbidden, "permission denied")
	ErrNotFound    = New(NotFound, "resource not found")

	ErrInvalidReading    = New(InvalidReading, "invalid reading")
	ErrInvalidTransition = New(InvalidTransition, "transition not allowed")
	ErrCapacityExceeded  = New(CapacityExceeded, "silo capacity exceeded")
	ErrSiloUnavailable   = New(SiloUnavailable, "silo unavailable")
	ErrStaleAssessment   = New(StaleAssessmentRace, "concurrent assessment write, retry later")
)

// CodeOf returns the code of err, or InternalServerError when err is not a
// CodeError.
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalServerError
}

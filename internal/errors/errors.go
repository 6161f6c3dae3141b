/*
Package errors - Error Kinds for the Travel & Attendance Analytics Engine

==============================================================================
FILE: internal/errors/errors.go
==============================================================================

DESCRIPTION:
    Typed error kinds shared by every component, so the HTTP layer can map
    them to status codes without parsing strings. Replaces ad hoc error
    values with a single AppError carrying a machine-readable code and the
    HTTP status §7 assigns it.

USAGE:
    return errors.ErrSourceInvalid.WithMessage("workbook missing sheet: 机票")
    if errors.Is(err, errors.ErrStoreContention) { ... retry after backoff ... }

DEVELOPER GUIDELINES:
    OK to modify: add new error kinds as needed
    DO NOT modify: AppError's Error/Unwrap/Is implementation

==============================================================================
*/
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// AppError represents an application-level error with an HTTP status.
type AppError struct {
	Code       string // Machine-readable error kind, per §7
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is implements error matching for errors.Is() by comparing Code, so a
// wrapped AppError still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAppError creates a new application error kind.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Wrap attaches an underlying error to an existing error kind.
func Wrap(err error, kind *AppError) *AppError {
	return &AppError{Code: kind.Code, Message: kind.Message, HTTPStatus: kind.HTTPStatus, Err: err}
}

// WithMessage returns a copy of the error kind with a more specific message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{Code: e.Code, Message: msg, HTTPStatus: e.HTTPStatus, Err: e.Err}
}

// ============================================================================
// Error kinds (§7)
// ============================================================================

var (
	// ErrSourceInvalid: workbook missing a required sheet or unreadable.
	// Fatal to the ingestion; surfaced to the caller.
	ErrSourceInvalid = NewAppError(
		"SOURCE_INVALID",
		"workbook is missing a required sheet or could not be read",
		http.StatusBadRequest,
	)

	// ErrRowDefect: one source row malformed. Warning only — counted and
	// logged, ingestion continues. Rarely returned as an error value itself;
	// mostly exists so callers that do treat a row defect as fatal (there
	// are none in this engine) have a matching kind to check against.
	ErrRowDefect = NewAppError(
		"ROW_DEFECT",
		"a source row was malformed and was dropped",
		http.StatusBadRequest,
	)

	// ErrUnknownMonth: query references a month not in the store. The
	// aggregator and store never actually return this as an error — §7 says
	// it resolves to an empty result — but the kind exists for symmetry and
	// for components that want to log the condition without failing.
	ErrUnknownMonth = NewAppError(
		"UNKNOWN_MONTH",
		"no data exists for the requested month",
		http.StatusOK,
	)

	// ErrStoreContention: per-month lock held past internal/store's
	// lockAcquireTimeout. Transient; caller may retry after a short backoff.
	ErrStoreContention = NewAppError(
		"STORE_CONTENTION",
		"a write to this month is already in progress",
		http.StatusConflict,
	)

	// ErrCancelled: explicit cancellation before commit (only possible
	// during ingestion steps 1-2, per §5).
	ErrCancelled = NewAppError(
		"CANCELLED",
		"the operation was cancelled before it committed",
		499,
	)

	// ErrInternal: uncaught failure. Full detail belongs in the logs, not
	// in the message returned to the caller.
	ErrInternal = NewAppError(
		"INTERNAL",
		"an internal error occurred",
		http.StatusInternalServerError,
	)
)

// GetHTTPStatus returns the HTTP status code an error should map to.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the machine-readable kind for an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

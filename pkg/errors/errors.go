// Package errors is the error taxonomy shared by every layer. An AppError
// carries the HTTP status and the machine-readable code it is rendered with,
// so handlers never map errors themselves.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase     ErrorType = "DATABASE"
)

// Error codes surfaced to API clients
const (
	CodeInvalidDate      = "INVALID_DATE"
	CodeInvalidPayload   = "INVALID_PAYLOAD"
	CodeGameExists       = "GAME_EXISTS"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeStoreFailure     = "STORE_FAILURE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Type))
	if e.Code != "" {
		sb.WriteString("[" + e.Code + "]")
	}
	sb.WriteString(": " + e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, " (caused by: %v)", e.Cause)
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets the client-facing error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails attaches structured details to the response body
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// captureStackTrace records the stack above the exported constructor
func captureStackTrace() string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, resource+" not found")
}

func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message)
}

func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, fmt.Sprintf("service '%s' is unavailable", service))
}

// NewDatabaseError wraps a store failure; op names the store operation
func NewDatabaseError(op string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, http.StatusInternalServerError, fmt.Sprintf("database operation '%s' failed", op)).
		WithCause(err)
}

// GameNotFound reports that neither date nor any earlier date has a game
func GameNotFound(date string) *AppError {
	return NewNotFoundError("game").
		WithCode(CodeGameNotFound).
		WithDetails(map[string]interface{}{"date": date})
}

// StoreUnavailable reports a resolution or call that could not reach the
// store. cause may be nil.
func StoreUnavailable(date string, cause error) *AppError {
	err := NewUnavailableError("game store").WithCode(CodeStoreUnavailable).WithCause(cause)
	if date != "" {
		err.Details = map[string]interface{}{"date": date}
	}
	return err
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool    { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool  { return IsType(err, ErrorTypeValidation) }
func IsConflict(err error) bool    { return IsType(err, ErrorTypeConflict) }
func IsDatabase(err error) bool    { return IsType(err, ErrorTypeDatabase) }
func IsUnavailable(err error) bool { return IsType(err, ErrorTypeUnavailable) }

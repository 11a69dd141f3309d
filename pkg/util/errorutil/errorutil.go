package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes exposed to API callers.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeMissingFile         = "MISSING_FILE"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeDuplicatePeriod     = "DUPLICATE_PERIOD"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeStorage             = "STORAGE_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. A DomainError matches a sentinel with the same Code.
var (
	ErrValidation          = &DomainError{Code: CodeValidation}
	ErrNotFound            = &DomainError{Code: CodeNotFound}
	ErrUnauthorized        = &DomainError{Code: CodeUnauthorized}
	ErrInvalidCredentials  = &DomainError{Code: CodeInvalidCredentials}
	ErrForbidden           = &DomainError{Code: CodeForbidden}
	ErrMissingFile         = &DomainError{Code: CodeMissingFile}
	ErrUnsupportedFileType = &DomainError{Code: CodeUnsupportedFileType}
	ErrDuplicatePeriod     = &DomainError{Code: CodeDuplicatePeriod}
	ErrConcurrencyConflict = &DomainError{Code: CodeConcurrencyConflict}
	ErrStorage             = &DomainError{Code: CodeStorage}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid username or password", http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewMissingFile() error {
	return NewDomainError(CodeMissingFile, "a report file is required", http.StatusBadRequest,
		map[string]any{"field": "file"})
}

func NewUnsupportedFileType(ext string, allowed []string) error {
	return NewDomainError(CodeUnsupportedFileType, "file type not allowed", http.StatusUnsupportedMediaType,
		map[string]any{"extension": ext, "allowed": allowed})
}

func NewDuplicatePeriod(year int, quarter string) error {
	return NewDomainError(CodeDuplicatePeriod, "a report for this period was already submitted", http.StatusConflict,
		map[string]any{"year": year, "quarter": quarter})
}

func NewConcurrencyConflict(year int, quarter string) error {
	return NewDomainError(CodeConcurrencyConflict, "another submission for this period completed first", http.StatusConflict,
		map[string]any{"year": year, "quarter": quarter})
}

// NewStorageError hides the underlying I/O error from callers but keeps it for logs.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       CodeStorage,
		Message:    "document storage unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}

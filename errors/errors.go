package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
// It lets code-only sentinels match through errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinel returns a message-less AppError usable as an errors.Is target.
func Sentinel(code ErrorCode) *AppError {
	return &AppError{Code: code}
}

// HasCode reports whether any error in err's chain is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, Sentinel(code))
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// --- Constructors ---

// Configuration creates an AppError for invalid configuration or a malformed source file.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// Mapping creates an AppError for a class that cannot be mapped to a table.
func Mapping(class string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMapping, Message: fmt.Sprintf("Unable to resolve the table of %s.", class),
		Details: map[string]any{"class": class}, Cause: cause,
	}
}

// UnknownFactory creates an AppError for a class with no loaded definition.
func UnknownFactory(class string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownFactory, Message: fmt.Sprintf("There is no %s factory loaded.", class),
		Details: map[string]any{"class": class},
	}
}

// UnknownAlias creates an AppError for an alias missing from a definition.
func UnknownAlias(class, alias string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownAlias, Message: fmt.Sprintf("Alias %q not found for class %q.", alias, class),
		Details: map[string]any{"class": class, "alias": alias},
	}
}

// TableNotFound creates an AppError for a table that does not exist.
func TableNotFound(table string) *AppError {
	return &AppError{
		Code: ErrCodeTableNotFound, Message: fmt.Sprintf("Table %q does not exist.", table),
		Details: map[string]any{"table": table},
	}
}

// NotPrepared creates an AppError for an operation that requires Prepare first.
func NotPrepared(operation string) *AppError {
	return &AppError{
		Code: ErrCodeNotPrepared, Message: fmt.Sprintf("%s requires a successful Prepare.", operation),
		Details: map[string]any{"operation": operation},
	}
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates an AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates an AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// DatabaseError creates an AppError for a database error.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred.",
		Cause: cause,
	}
}

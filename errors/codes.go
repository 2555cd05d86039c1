package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration and discovery errors
const (
	// ErrCodeConfiguration indicates invalid configuration, an invalid
	// connection identifier or a malformed factory source file.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeMapping indicates a class could not be resolved to a table.
	ErrCodeMapping ErrorCode = "MAPPING_ERROR"
)

// Lookup errors
const (
	// ErrCodeUnknownFactory indicates no definition exists for a class.
	ErrCodeUnknownFactory ErrorCode = "UNKNOWN_FACTORY"
	// ErrCodeUnknownAlias indicates an alias is not defined for a class.
	ErrCodeUnknownAlias ErrorCode = "UNKNOWN_ALIAS"
	// ErrCodeTableNotFound indicates the target table does not exist.
	ErrCodeTableNotFound ErrorCode = "TABLE_NOT_FOUND"
)

// State and input errors
const (
	// ErrCodeNotPrepared indicates an operation ran before Prepare succeeded.
	ErrCodeNotPrepared ErrorCode = "NOT_PREPARED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

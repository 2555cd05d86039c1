package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/factorygirl/errors"
)

var missingTablePatterns = []string{
	"no such table",  // sqlite
	"doesn't exist",  // mysql
	"does not exist", // postgres
	"unknown table",  // mysql TRUNCATE
}

// IsConnectionError reports whether err looks like a dropped or refused connection.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"driver: bad connection",
		"database is closed",
	} {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsMissingTableError reports whether err says a table does not exist.
func IsMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, p := range missingTablePatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a driver error raised while working on table to an
// AppError. AppErrors pass through unchanged.
func FromDatabase(err error, table string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if IsMissingTableError(err) {
		return apperrors.TableNotFound(table).WithCause(err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.DatabaseError(err).WithDetail("table", table).WithDetail("reason", "duplicate key")
	}
	if IsConnectionError(err) {
		return apperrors.DatabaseError(err).WithDetail("table", table).WithDetail("reason", "connection")
	}
	e := apperrors.DatabaseError(err)
	if table != "" {
		e.WithDetail("table", table)
	}
	return e
}

// Package errors provides the structured error type shared by every
// factorygirl package.
//
// Each failure carries a machine-readable ErrorCode so callers can branch on
// the kind of failure (unknown factory, unknown alias, missing table, ...)
// without parsing messages:
//
//	_, err := f.Build("User", nil, "admin")
//	if errors.HasCode(err, errors.ErrCodeUnknownAlias) {
//	    // ...
//	}
//
// AppError also matches by code through the standard library's errors.Is, so
// package-level sentinels such as factory.ErrUnknownFactory can be compared
// against any wrapped error.
package errors

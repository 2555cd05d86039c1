package factory

import apperrors "github.com/kbukum/factorygirl/errors"

// Sentinels for errors.Is matching. Errors returned by this package carry
// the same codes with a message and details attached.
var (
	ErrConfiguration  = apperrors.Sentinel(apperrors.ErrCodeConfiguration)
	ErrMapping        = apperrors.Sentinel(apperrors.ErrCodeMapping)
	ErrUnknownFactory = apperrors.Sentinel(apperrors.ErrCodeUnknownFactory)
	ErrUnknownAlias   = apperrors.Sentinel(apperrors.ErrCodeUnknownAlias)
	ErrTableNotFound  = apperrors.Sentinel(apperrors.ErrCodeTableNotFound)
	ErrNotPrepared    = apperrors.Sentinel(apperrors.ErrCodeNotPrepared)
)

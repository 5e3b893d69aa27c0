package common

import (
	"errors"
	"fmt"
)

// Callers should use errors.Is to match these values.
var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Lookups that surface with route-specific status codes.
	ErrUserNotFound   = fmt.Errorf("%w: user", ErrorNotFound)
	ErrReviewNotFound = fmt.Errorf("%w: review", ErrorNotFound)
	ErrReplyNotFound  = fmt.Errorf("%w: reply", ErrorNotFound)

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Credential verification failures. Both are reported to clients the same way.
	ErrUnknownUser = fmt.Errorf("%w: unknown user", ErrorUnauthorized)
	ErrBadPassword = fmt.Errorf("%w: bad password", ErrorUnauthorized)

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

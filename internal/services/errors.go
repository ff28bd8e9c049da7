package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/prepstack-backend/internal/platform/apierr"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvalidColumn      = errors.New("column is not an allowed counter")
	ErrInvalidPoints      = errors.New("points amount out of range")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrInvalidPagination  = errors.New("invalid pagination")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUpdateFailed       = errors.New("update failed")
)

func unauthenticated(reason string) error {
	if reason == "" {
		return apierr.Unauthenticated(ErrUnauthenticated)
	}
	return apierr.Unauthenticated(fmt.Errorf("%w: %s", ErrUnauthenticated, reason))
}

func invalid(code string, sentinel error, format string, args ...any) error {
	return apierr.Validation(code, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

func profileNotFound() error {
	return apierr.NotFound("profile_not_found", ErrProfileNotFound)
}

// updateFailed and storeFailed keep store causes out of the client-facing
// message; callers log the cause.
func updateFailed() error {
	return apierr.StoreFailure("update_failed", ErrUpdateFailed)
}

func storeFailed(op string) error {
	return apierr.StoreFailure("store_failed", fmt.Errorf("%s failed", op))
}

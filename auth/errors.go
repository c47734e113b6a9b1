package auth

import (
	"errors"
	"fmt"

	"github.com/wastewise/backend/models"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrNotifyFailed         = errors.New("failed to send verification")
	ErrSelfRoleChange       = errors.New("admins cannot change their own role")
	ErrSelfDelete           = errors.New("accounts cannot delete themselves")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ForbiddenError carries the missing permission (or allowed roles) and the
// caller's role. It matches ErrForbidden.
type ForbiddenError struct {
	Required string
	Role     models.Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: requires %s, have role %s", e.Required, e.Role)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

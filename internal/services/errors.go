package services

import (
	"errors"
	"fmt"
)

// ===== NOT FOUND =====

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrSectionNotFound      = errors.New("section not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrVideoNotFound        = errors.New("video not found")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

// ===== AUTH =====

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("user account is inactive")
)

// ===== CONFLICTS =====

var (
	ErrEmailTaken          = errors.New("email already in use")
	ErrUIDTaken            = errors.New("uid already in use")
	ErrDepartmentExists    = errors.New("department name already in use")
	ErrCourseCodeTaken     = errors.New("course code already in use")
	ErrAlreadyEnrolled     = errors.New("user already enrolled in section with this role")
	ErrSectionFull         = errors.New("section is at capacity")
)

// ===== ACCESS =====

var (
	// ErrNotEnrolled rejects content access for principals without an
	// enrollment in the course and without an elevated global role.
	ErrNotEnrolled = errors.New("not enrolled in this course")
)

// PermissionError reports a denied operation with the reason attached.
type PermissionError struct {
	Operation string
	Reason    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Operation, e.Reason)
}

func NewPermissionError(operation, reason string) *PermissionError {
	return &PermissionError{Operation: operation, Reason: reason}
}

// IsPermissionError reports whether err is a permission denial.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ValidationError wraps a validation failure so handlers can map it to a
// 400 without inspecting the inner type.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflictError reports whether err is one of the uniqueness conflicts.
func IsConflictError(err error) bool {
	for _, target := range []error{
		ErrEmailTaken, ErrUIDTaken, ErrDepartmentExists,
		ErrCourseCodeTaken, ErrAlreadyEnrolled, ErrSectionFull,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrDepartmentNotFound, ErrCourseNotFound,
		ErrSectionNotFound, ErrEnrollmentNotFound, ErrVideoNotFound,
		ErrQuizNotFound, ErrAttemptNotFound, ErrAnnouncementNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

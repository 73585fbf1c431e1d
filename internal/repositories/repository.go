package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository aggregates all entity repositories behind one interface so
// services depend on a single injected client.
type Repository interface {
	User() UserRepository
	Department() DepartmentRepository
	Course() CourseRepository
	Section() SectionRepository
	Enrollment() EnrollmentRepository
	Video() VideoRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Announcement() AnnouncementRepository
	Log() LogRepository
	Dashboard() DashboardRepository

	// WithTransaction runs fn against a repository bound to one transaction.
	// Check-then-act sequences (capacity, duplicate enrollment) must go
	// through here.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is a record-not-found from the store.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation. The
// enrollment and user flows rely on this to map storage conflicts onto
// domain conflicts.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

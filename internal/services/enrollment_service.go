package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

// Enroll creates one enrollment. Capacity and duplicate checks run inside a
// transaction with the section row locked, so two concurrent enrollments
// into the last seat cannot both succeed; the unique (user, section, role)
// index backs the duplicate check under concurrency.
func (s *enrollmentService) Enroll(ctx context.Context, req *EnrollRequest, actor auth.Principal) (*models.Enrollment, error) {
	if !actor.HasRole(models.RoleCC) {
		return nil, NewPermissionError("enrollment.create", "requires CC role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	enrollment := &models.Enrollment{
		UserID:    req.UserID,
		SectionID: req.SectionID,
		Role:      req.Role,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		user, err := txRepo.User().GetByID(ctx, nil, req.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return err
		}
		if user.IsActive != models.UserActive {
			return NewPermissionError("enrollment.create", "cannot enroll an inactive user")
		}

		section, err := txRepo.Section().GetByIDForUpdate(ctx, nil, req.SectionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSectionNotFound
			}
			return err
		}

		if _, err := txRepo.Enrollment().Find(ctx, nil, req.UserID, req.SectionID, req.Role); err == nil {
			return ErrAlreadyEnrolled
		} else if !repositories.IsNotFoundError(err) {
			return err
		}

		if req.Role == models.RoleStudent {
			count, err := txRepo.Enrollment().CountStudents(ctx, nil, req.SectionID)
			if err != nil {
				return err
			}
			if count >= int64(section.Capacity) {
				return ErrSectionFull
			}
		}

		return txRepo.Enrollment().Create(ctx, nil, enrollment)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	s.logger.Info("Enrollment created",
		"enrollment_id", enrollment.ID,
		"user_id", req.UserID,
		"section_id", req.SectionID,
		"role", req.Role)
	s.audit.Record(ctx, actor.UserID, "enrollment.create", map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"user_id":       req.UserID,
		"section_id":    req.SectionID,
		"role":          req.Role,
	})
	return enrollment, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, enrollmentID string, actor auth.Principal) error {
	if !actor.HasRole(models.RoleCC) {
		return NewPermissionError("enrollment.delete", "requires CC role or above")
	}

	enrollment, err := s.repo.Enrollment().GetByID(ctx, s.db, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to get enrollment: %w", err)
	}

	if err := s.repo.Enrollment().Delete(ctx, s.db, enrollmentID); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "enrollment.delete", map[string]interface{}{
		"enrollment_id": enrollmentID,
		"user_id":       enrollment.UserID,
		"section_id":    enrollment.SectionID,
	})
	return nil
}

func (s *enrollmentService) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) ListBySection(ctx context.Context, sectionID string, role *models.Role) ([]*models.Enrollment, error) {
	if _, err := s.repo.Section().GetByID(ctx, s.db, sectionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	enrollments, err := s.repo.Enrollment().ListBySection(ctx, s.db, sectionID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

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

// DefaultSectionCapacity caps student enrollments when a section is created
// without an explicit capacity.
const DefaultSectionCapacity = 50

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, actor auth.Principal) (*models.Course, error) {
	if !actor.HasRole(models.RoleHOD) {
		return nil, NewPermissionError("course.create", "requires HOD role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	course := &models.Course{
		CourseName: req.CourseName,
		CourseCode: req.CourseCode,
		DeptID:     req.DeptID,
		CreatedBy:  actor.UserID,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Department().GetByID(ctx, nil, req.DeptID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDepartmentNotFound
			}
			return err
		}
		if _, err := txRepo.Course().GetByCode(ctx, nil, req.CourseCode); err == nil {
			return ErrCourseCodeTaken
		} else if !repositories.IsNotFoundError(err) {
			return err
		}
		return txRepo.Course().Create(ctx, nil, course)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrCourseCodeTaken
		}
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "course.create", map[string]interface{}{"course_id": course.ID, "code": course.CourseCode})
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) GetWithSections(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByIDWithSections(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, actor auth.Principal) (*models.Course, error) {
	if !actor.HasRole(models.RoleHOD) {
		return nil, NewPermissionError("course.update", "requires HOD role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CourseName != nil {
		course.CourseName = *req.CourseName
	}
	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "course.update", map[string]interface{}{"course_id": id})
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id string, actor auth.Principal) error {
	if !actor.HasRole(models.RoleAdmin) {
		return NewPermissionError("course.delete", "requires ADMIN role or above")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "course.delete", map[string]interface{}{"course_id": id})
	return nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return &CourseListResponse{Courses: courses, Total: total}, nil
}

func (s *courseService) CreateSection(ctx context.Context, req *CreateSectionRequest, actor auth.Principal) (*models.Section, error) {
	if !actor.HasRole(models.RoleCC) {
		return nil, NewPermissionError("section.create", "requires CC role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	if _, err := s.GetByID(ctx, req.CourseID); err != nil {
		return nil, err
	}

	section := &models.Section{
		SectionName: req.SectionName,
		CourseID:    req.CourseID,
		Capacity:    DefaultSectionCapacity,
	}
	if req.Capacity != nil {
		section.Capacity = *req.Capacity
	}

	if err := s.repo.Section().Create(ctx, s.db, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "section.create", map[string]interface{}{"section_id": section.ID, "course_id": req.CourseID})
	return section, nil
}

func (s *courseService) DeleteSection(ctx context.Context, id string, actor auth.Principal) error {
	if !actor.HasRole(models.RoleCC) {
		return NewPermissionError("section.delete", "requires CC role or above")
	}
	if err := s.repo.Section().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to delete section: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "section.delete", map[string]interface{}{"section_id": id})
	return nil
}

func (s *courseService) ListSections(ctx context.Context, courseID string) ([]*models.Section, error) {
	if _, err := s.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	sections, err := s.repo.Section().ListByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

type announcementService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewAnnouncementService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) AnnouncementService {
	return &announcementService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

func (s *announcementService) Create(ctx context.Context, req *CreateAnnouncementRequest, actor auth.Principal) (*models.Announcement, error) {
	if !actor.HasRole(models.RoleTeacher) {
		return nil, NewPermissionError("announcement.create", "requires TEACHER role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, s.db, *req.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
	}
	if req.SectionID != nil {
		if _, err := s.repo.Section().GetByID(ctx, s.db, *req.SectionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSectionNotFound
			}
			return nil, fmt.Errorf("failed to get section: %w", err)
		}
	}

	ann := &models.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		SenderID:   actor.UserID,
		TargetRole: req.TargetRole,
		CourseID:   req.CourseID,
		SectionID:  req.SectionID,
		ExpiryDate: req.ExpiryDate,
	}
	if err := s.repo.Announcement().Create(ctx, s.db, ann); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "announcement.create", map[string]interface{}{"announcement_id": ann.ID})
	return ann, nil
}

func (s *announcementService) Delete(ctx context.Context, id string, actor auth.Principal) error {
	ann, err := s.repo.Announcement().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnnouncementNotFound
		}
		return fmt.Errorf("failed to get announcement: %w", err)
	}
	if ann.SenderID != actor.UserID && !actor.HasRole(models.RoleAdmin) {
		return NewPermissionError("announcement.delete", "not the sender")
	}

	if err := s.repo.Announcement().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "announcement.delete", map[string]interface{}{"announcement_id": id})
	return nil
}

// ListVisible derives the reader's feed: audience targets from their global
// roles, course scope from their enrollments, plus global announcements,
// with expired ones filtered out.
func (s *announcementService) ListVisible(ctx context.Context, principal auth.Principal, limit, offset int) (*AnnouncementListResponse, error) {
	targets := targetsFor(principal.Roles)

	courseIDs, err := s.repo.Enrollment().CourseIDsForUser(ctx, s.db, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve enrolled courses: %w", err)
	}
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, s.db, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve enrolled sections: %w", err)
	}
	sectionIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		sectionIDs = append(sectionIDs, e.SectionID)
	}

	now := time.Now()
	anns, total, err := s.repo.Announcement().List(ctx, s.db, repositories.AnnouncementFilters{
		Targets:       targets,
		CourseIDs:     courseIDs,
		SectionIDs:    sectionIDs,
		IncludeGlobal: true,
		ActiveAt:      &now,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return &AnnouncementListResponse{Announcements: anns, Total: total}, nil
}

func (s *announcementService) ListBySender(ctx context.Context, senderID string, limit, offset int) (*AnnouncementListResponse, error) {
	anns, total, err := s.repo.Announcement().ListBySender(ctx, s.db, senderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return &AnnouncementListResponse{Announcements: anns, Total: total}, nil
}

// targetsFor maps a principal's global roles onto the audiences they read.
// BOTH is always included; TEACHER audience covers every teaching-level role.
func targetsFor(roles []models.Role) []models.AnnouncementTarget {
	targets := []models.AnnouncementTarget{models.TargetBoth}
	for _, r := range roles {
		switch {
		case r == models.RoleStudent:
			targets = append(targets, models.TargetStudents)
		case r.Rank() >= models.RoleTeacher.Rank():
			targets = append(targets, models.TargetTeachers)
		}
	}
	return dedupeTargets(targets)
}

func dedupeTargets(in []models.AnnouncementTarget) []models.AnnouncementTarget {
	seen := make(map[models.AnnouncementTarget]bool, len(in))
	out := in[:0]
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

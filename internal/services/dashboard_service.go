package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, db: db, logger: logger}
}

func (s *dashboardService) PlatformStats(ctx context.Context) (*repositories.PlatformStats, error) {
	stats, err := s.repo.Dashboard().GetPlatformStats(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to compute platform stats: %w", err)
	}
	return stats, nil
}

func (s *dashboardService) TeacherStats(ctx context.Context, teacherID string) (*repositories.TeacherStats, error) {
	stats, err := s.repo.Dashboard().GetTeacherStats(ctx, s.db, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute teacher stats: %w", err)
	}
	return stats, nil
}

func (s *dashboardService) StudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error) {
	stats, err := s.repo.Dashboard().GetStudentStats(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute student stats: %w", err)
	}
	return stats, nil
}

func (s *dashboardService) ListLogs(ctx context.Context, filters repositories.LogFilters) ([]*models.Log, int64, error) {
	return s.repo.Log().List(ctx, s.db, filters)
}

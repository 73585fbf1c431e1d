package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/cache"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

// DashboardPostgreSQL computes dashboard numbers with live aggregate
// queries. Results are cached briefly; nothing here is precomputed or
// sampled.
type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db, cacheManager: cacheManager}
}

func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

func (d *DashboardPostgreSQL) GetPlatformStats(ctx context.Context, tx *gorm.DB) (*repositories.PlatformStats, error) {
	db := d.getDB(tx)

	var stats repositories.PlatformStats
	err := d.cacheManager.Stats.CacheOrExecute(ctx, "platform", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return d.computePlatformStats(ctx, db)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (d *DashboardPostgreSQL) computePlatformStats(ctx context.Context, db *gorm.DB) (*repositories.PlatformStats, error) {
	stats := &repositories.PlatformStats{
		UsersByRole:    make(map[models.Role]int64),
		VideosByStatus: make(map[models.VideoStatus]int64),
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ?", models.UserActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}

	for _, role := range models.AllRoles {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).
			Where("roles::text LIKE ?", fmt.Sprintf(`%%"%s"%%`, role)).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count users by role %s: %w", role, err)
		}
		stats.UsersByRole[role] = count
	}

	if err := db.WithContext(ctx).Model(&models.Department{}).Count(&stats.TotalDepartments).Error; err != nil {
		return nil, fmt.Errorf("count departments: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Section{}).Count(&stats.TotalSections).Error; err != nil {
		return nil, fmt.Errorf("count sections: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}

	type statusCount struct {
		Status models.VideoStatus
		Count  int64
	}
	var statusCounts []statusCount
	if err := db.WithContext(ctx).Model(&models.Video{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("count videos by status: %w", err)
	}
	for _, sc := range statusCounts {
		stats.VideosByStatus[sc.Status] = sc.Count
	}

	if err := db.WithContext(ctx).Model(&models.Quiz{}).Count(&stats.TotalQuizzes).Error; err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	return stats, nil
}

func (d *DashboardPostgreSQL) GetTeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.TeacherStats, error) {
	db := d.getDB(tx)

	var stats repositories.TeacherStats
	cacheKey := fmt.Sprintf("teacher:%s", teacherID)
	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return d.computeTeacherStats(ctx, db, teacherID)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (d *DashboardPostgreSQL) computeTeacherStats(ctx context.Context, db *gorm.DB, teacherID string) (*repositories.TeacherStats, error) {
	stats := &repositories.TeacherStats{}

	teachingSections := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("section_id").
		Where("user_id = ? AND role = ?", teacherID, models.RoleTeacher)

	if err := db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND role = ?", teacherID, models.RoleTeacher).
		Count(&stats.SectionCount).Error; err != nil {
		return nil, fmt.Errorf("count sections: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("role = ? AND section_id IN (?)", models.RoleStudent, teachingSections).
		Count(&stats.StudentCount).Error; err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.Video{}).
		Where("uploaded_by = ?", teacherID).
		Count(&stats.VideoCount).Error; err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Video{}).
		Where("uploaded_by = ? AND status = ?", teacherID, models.VideoPending).
		Count(&stats.PendingVideos).Error; err != nil {
		return nil, fmt.Errorf("count pending videos: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Quiz{}).
		Where("created_by = ?", teacherID).
		Count(&stats.QuizCount).Error; err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}

	var avg *float64
	if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select("AVG(score)").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quizzes.created_by = ?", teacherID).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	if avg != nil {
		stats.AverageScore = *avg
	}

	return stats, nil
}

func (d *DashboardPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string) (*repositories.StudentStats, error) {
	db := d.getDB(tx)
	stats := &repositories.StudentStats{}

	if err := db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND role = ?", studentID, models.RoleStudent).
		Count(&stats.EnrollmentCount).Error; err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("user_id = ?", studentID).
		Count(&stats.AttemptCount).Error; err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	var avg *float64
	if err := db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select("AVG(score)").
		Where("user_id = ?", studentID).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	if avg != nil {
		stats.AverageScore = *avg
	}

	return stats, nil
}

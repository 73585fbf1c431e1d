package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/cache"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

// ===== Videos =====

type VideoPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewVideoPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.VideoRepository {
	return &VideoPostgreSQL{db: db, cacheManager: cacheManager}
}

func (v *VideoPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

func (v *VideoPostgreSQL) Create(ctx context.Context, tx *gorm.DB, video *models.Video) error {
	if err := v.getDB(tx).WithContext(ctx).Create(video).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, v.cacheManager, video.CourseID)
	return nil
}

func (v *VideoPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Video, error) {
	var video models.Video
	if err := v.getDB(tx).WithContext(ctx).First(&video, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (v *VideoPostgreSQL) Update(ctx context.Context, tx *gorm.DB, video *models.Video) error {
	if err := v.getDB(tx).WithContext(ctx).Save(video).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, v.cacheManager, video.CourseID)
	return nil
}

func (v *VideoPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	video, err := v.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := v.getDB(tx).WithContext(ctx).Delete(&models.Video{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, v.cacheManager, video.CourseID)
	return nil
}

func (v *VideoPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters repositories.VideoFilters) ([]*models.Video, int64, error) {
	db := v.getDB(tx)
	var videos []*models.Video
	var total int64

	query := db.WithContext(ctx).Model(&models.Video{}).Where("course_id = ?", courseID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UploadedBy != nil {
		query = query.Where("uploaded_by = ?", *filters.UploadedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if err := query.Order("created_at desc").Limit(limit).Offset(filters.Offset).Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (v *VideoPostgreSQL) ListPending(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Video, int64, error) {
	db := v.getDB(tx)
	var videos []*models.Video
	var total int64

	query := db.WithContext(ctx).Model(&models.Video{}).Where("status = ?", models.VideoPending)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if err := query.Preload("Course").Order("created_at asc").Limit(limit).Offset(offset).Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// ===== Quizzes =====

type QuizPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db, cacheManager: cacheManager}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := q.getDB(tx).WithContext(ctx).Create(quiz).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, q.cacheManager, quiz.CourseID)
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.getDB(tx).WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := q.getDB(tx).WithContext(ctx).Save(quiz).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, q.cacheManager, quiz.CourseID)
	return nil
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	quiz, err := q.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := q.getDB(tx).WithContext(ctx).Delete(&models.Quiz{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, q.cacheManager, quiz.CourseID)
	return nil
}

func (q *QuizPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if err := q.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at desc").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) ListByVideo(ctx context.Context, tx *gorm.DB, videoID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if err := q.getDB(tx).WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at asc").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

// ===== Attempts =====

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return a.getDB(tx).WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.getDB(tx).WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.getDB(tx).WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Preload("User").
		Order("completed_at desc").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Quiz").
		Order("completed_at desc").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) FindByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.getDB(tx).WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("completed_at desc").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

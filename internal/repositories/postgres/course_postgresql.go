package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campushub/lms-service/internal/cache"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	db := c.getDB(tx)

	if tx != nil {
		var course models.Course
		if err := db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &course, nil
	}

	cacheKey := fmt.Sprintf("id:%s", id)
	var course models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	var course models.Course
	if err := c.getDB(tx).WithContext(ctx).First(&course, "course_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByIDWithSections(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	if err := c.getDB(tx).WithContext(ctx).
		Preload("Department").
		Preload("Sections").
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Save(course).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if err := c.getDB(tx).WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	var courses []*models.Course
	var total int64

	query := db.WithContext(ctx).Model(&models.Course{})
	if filters.DeptID != nil {
		query = query.Where("dept_id = ?", *filters.DeptID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", *filters.Search)
		query = query.Where("course_name ILIKE ? OR course_code ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Department").Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ===== Sections =====

type SectionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSectionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SectionRepository {
	return &SectionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (s *SectionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := s.getDB(tx).WithContext(ctx).Create(section).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, s.cacheManager, section.CourseID)
	return nil
}

func (s *SectionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Section, error) {
	var section models.Section
	if err := s.getDB(tx).WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *SectionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Section, error) {
	var section models.Section
	if err := s.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&section, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *SectionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := s.getDB(tx).WithContext(ctx).Save(section).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, s.cacheManager, section.CourseID)
	return nil
}

func (s *SectionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	section, err := s.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := s.getDB(tx).WithContext(ctx).Delete(&models.Section{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, s.cacheManager, section.CourseID)
	return nil
}

func (s *SectionPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Section, error) {
	var sections []*models.Section
	if err := s.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("section_name asc").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

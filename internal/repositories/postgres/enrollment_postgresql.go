package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Create relies on the (user, section, role) unique index as the final
// arbiter: concurrent duplicates surface as a constraint violation, not a
// second row.
func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return e.getDB(tx).WithContext(ctx).Create(enrollment).Error
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Find(ctx context.Context, tx *gorm.DB, userID, sectionID string, role models.Role) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND section_id = ? AND role = ?", userID, sectionID, role).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return e.getDB(tx).WithContext(ctx).Delete(&models.Enrollment{}, "id = ?", id).Error
}

func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Section").
		Preload("Section.Course").
		Order("enrolled_at desc").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) ListBySection(ctx context.Context, tx *gorm.DB, sectionID string, role *models.Role) ([]*models.Enrollment, error) {
	query := e.getDB(tx).WithContext(ctx).Where("section_id = ?", sectionID)
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	var enrollments []*models.Enrollment
	if err := query.Preload("User").Order("enrolled_at asc").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) CountStudents(ctx context.Context, tx *gorm.DB, sectionID string) (int64, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("section_id = ? AND role = ?", sectionID, models.RoleStudent).
		Count(&count).Error
	return count, err
}

func (e *EnrollmentPostgreSQL) FindForCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Joins("JOIN sections ON sections.id = enrollments.section_id").
		Where("enrollments.user_id = ? AND sections.course_id = ? AND sections.deleted_at IS NULL", userID, courseID).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) CourseIDsForUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	var courseIDs []string
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Distinct("sections.course_id").
		Joins("JOIN sections ON sections.id = enrollments.section_id").
		Where("enrollments.user_id = ? AND sections.deleted_at IS NULL", userID).
		Pluck("sections.course_id", &courseIDs).Error
	if err != nil {
		return nil, err
	}
	return courseIDs, nil
}

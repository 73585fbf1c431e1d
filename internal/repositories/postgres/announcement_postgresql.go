package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type AnnouncementPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAnnouncementPostgreSQL(db *gorm.DB) repositories.AnnouncementRepository {
	return &AnnouncementPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (a *AnnouncementPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AnnouncementPostgreSQL) Create(ctx context.Context, tx *gorm.DB, ann *models.Announcement) error {
	return a.getDB(tx).WithContext(ctx).Create(ann).Error
}

func (a *AnnouncementPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Announcement, error) {
	var ann models.Announcement
	if err := a.getDB(tx).WithContext(ctx).
		Preload("Sender").
		First(&ann, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ann, nil
}

func (a *AnnouncementPostgreSQL) Update(ctx context.Context, tx *gorm.DB, ann *models.Announcement) error {
	return a.getDB(tx).WithContext(ctx).Save(ann).Error
}

func (a *AnnouncementPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return a.getDB(tx).WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id).Error
}

// List builds the visibility query for one reader: announcements matching
// their audience, scoped to their courses or global, and not yet expired.
func (a *AnnouncementPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AnnouncementFilters) ([]*models.Announcement, int64, error) {
	db := a.getDB(tx)
	var anns []*models.Announcement
	var total int64

	query := db.WithContext(ctx).Model(&models.Announcement{})

	if len(filters.Targets) > 0 {
		query = query.Where("target_role IN ?", filters.Targets)
	}
	// Within a matched course, a section-scoped row is visible only to that
	// section's members.
	courseScope := "course_id IN ? AND section_id IS NULL"
	courseArgs := []interface{}{filters.CourseIDs}
	if len(filters.SectionIDs) > 0 {
		courseScope = "course_id IN ? AND (section_id IS NULL OR section_id IN ?)"
		courseArgs = append(courseArgs, filters.SectionIDs)
	}
	if filters.IncludeGlobal {
		if len(filters.CourseIDs) > 0 {
			query = query.Where("course_id IS NULL OR ("+courseScope+")", courseArgs...)
		} else {
			query = query.Where("course_id IS NULL")
		}
	} else if len(filters.CourseIDs) > 0 {
		query = query.Where(courseScope, courseArgs...)
	}
	if filters.ActiveAt != nil {
		query = query.Where("expiry_date IS NULL OR expiry_date > ?", *filters.ActiveAt)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Preload("Sender").Find(&anns).Error; err != nil {
		return nil, 0, err
	}
	return anns, total, nil
}

func (a *AnnouncementPostgreSQL) ListBySender(ctx context.Context, tx *gorm.DB, senderID string, limit, offset int) ([]*models.Announcement, int64, error) {
	db := a.getDB(tx)
	var anns []*models.Announcement
	var total int64

	query := db.WithContext(ctx).Model(&models.Announcement{}).Where("sender_id = ?", senderID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", limit, offset)
	if err := query.Find(&anns).Error; err != nil {
		return nil, 0, err
	}
	return anns, total, nil
}

package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type LogPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLogPostgreSQL(db *gorm.DB) repositories.LogRepository {
	return &LogPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (l *LogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, log *models.Log) error {
	return l.getDB(tx).WithContext(ctx).Create(log).Error
}

func (l *LogPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LogFilters) ([]*models.Log, int64, error) {
	db := l.getDB(tx)
	var logs []*models.Log
	var total int64

	query := db.WithContext(ctx).Model(&models.Log{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.DateFrom != nil {
		query = query.Where("timestamp >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("timestamp <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := query.Order("timestamp desc").Limit(limit).Offset(filters.Offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

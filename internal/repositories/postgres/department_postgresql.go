package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

type DepartmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewDepartmentPostgreSQL(db *gorm.DB) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (d *DepartmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

func (d *DepartmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, dept *models.Department) error {
	return d.getDB(tx).WithContext(ctx).Create(dept).Error
}

func (d *DepartmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Department, error) {
	var dept models.Department
	if err := d.getDB(tx).WithContext(ctx).
		Preload("Dean").
		First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (d *DepartmentPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Department, error) {
	var dept models.Department
	if err := d.getDB(tx).WithContext(ctx).First(&dept, "dept_name = ?", name).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (d *DepartmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, dept *models.Department) error {
	// Save skips nil pointer fields, so clearing the dean needs an explicit
	// column update.
	db := d.getDB(tx).WithContext(ctx)
	if err := db.Model(dept).Select("dept_name", "dean_id").Updates(map[string]interface{}{
		"dept_name": dept.DeptName,
		"dean_id":   dept.DeanID,
	}).Error; err != nil {
		return err
	}
	return nil
}

func (d *DepartmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return d.getDB(tx).WithContext(ctx).Delete(&models.Department{}, "id = ?", id).Error
}

func (d *DepartmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Department, int64, error) {
	db := d.getDB(tx)
	var depts []*models.Department
	var total int64

	query := db.WithContext(ctx).Model(&models.Department{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = d.helpers.ApplyPaginationAndSort(query, "dept_name", "asc", limit, offset)
	if err := query.Preload("Dean").Find(&depts).Error; err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

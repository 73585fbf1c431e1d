package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department records a dean assignment, it does not own the dean. When DeanID
// is set the referenced user must hold ADMIN and be ACTIVE; the department
// service enforces this on assignment.
type Department struct {
	ID        string  `json:"id" gorm:"primaryKey;size:255"`
	DeptName  string  `json:"dept_name" gorm:"uniqueIndex;not null;size:150" validate:"required,max=150"`
	DeanID    *string `json:"dean_id" gorm:"size:255;index"`
	CreatedBy string  `json:"created_by" gorm:"not null;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Dean    *User    `json:"dean,omitempty" gorm:"foreignKey:DeanID"`
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:DeptID"`
}

func (Department) TableName() string {
	return "departments"
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

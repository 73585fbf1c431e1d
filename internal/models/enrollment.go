package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment links a user to a section with a per-section role (STUDENT or
// TEACHER), distinct from the user's global role set. The
// (user, section, role) triple is unique at the storage layer; the
// application-level duplicate check is only a fast-path rejection.
type Enrollment struct {
	ID         string    `json:"id" gorm:"primaryKey;size:255"`
	UserID     string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment_triple"`
	SectionID  string    `json:"section_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment_triple"`
	Role       Role      `json:"role" gorm:"not null;size:20;uniqueIndex:idx_enrollment_triple" validate:"required,oneof=STUDENT TEACHER"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Section *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

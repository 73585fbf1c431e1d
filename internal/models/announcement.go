package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementTarget string

const (
	TargetStudents AnnouncementTarget = "STUDENT"
	TargetTeachers AnnouncementTarget = "TEACHER"
	TargetBoth     AnnouncementTarget = "BOTH"
)

type Announcement struct {
	ID         string             `json:"id" gorm:"primaryKey;size:255"`
	Title      string             `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Content    string             `json:"content" gorm:"type:text;not null" validate:"required"`
	SenderID   string             `json:"sender_id" gorm:"not null;size:255;index"`
	TargetRole AnnouncementTarget `json:"target_role" gorm:"not null;size:20;index" validate:"required,oneof=STUDENT TEACHER BOTH"`
	CourseID   *string            `json:"course_id" gorm:"size:255;index"`
	SectionID  *string            `json:"section_id" gorm:"size:255;index"`
	ExpiryDate *time.Time         `json:"expiry_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

func (Announcement) TableName() string {
	return "announcements"
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

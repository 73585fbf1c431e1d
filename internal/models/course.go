package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is the access-control boundary for content: a principal sees a
// course's videos and quizzes iff they hold an enrollment in one of its
// sections.
type Course struct {
	ID         string `json:"id" gorm:"primaryKey;size:255"`
	CourseName string `json:"course_name" gorm:"not null;size:200;index" validate:"required,max=200"`
	CourseCode string `json:"course_code" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	DeptID     string `json:"dept_id" gorm:"not null;size:255;index"`
	CreatedBy  string `json:"created_by" gorm:"not null;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Department *Department `json:"department,omitempty" gorm:"foreignKey:DeptID"`
	Sections   []Section   `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
	Videos     []Video     `json:"videos,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Section is the enrollment-granularity unit of a course.
type Section struct {
	ID          string `json:"id" gorm:"primaryKey;size:255"`
	SectionName string `json:"section_name" gorm:"not null;size:100" validate:"required,max=100"`
	CourseID    string `json:"course_id" gorm:"not null;size:255;index"`

	// Capacity caps STUDENT enrollments; the enrollment repository enforces it
	// inside a transaction with the section row locked.
	Capacity int `json:"capacity" gorm:"not null;default:50"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course      *Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:SectionID"`
}

func (Section) TableName() string {
	return "sections"
}

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

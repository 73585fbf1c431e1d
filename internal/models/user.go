package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User is the identity record behind every database-backed principal.
// Deactivation is the only destructive operation in observed flows; rows are
// never hard-deleted.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:255"`
	UID          string `json:"uid" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	Name         string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// Roles is the global role set; it must be non-empty and must contain
	// DefaultDashboard.
	Roles            datatypes.JSONSlice[Role] `json:"roles" gorm:"not null"`
	DefaultDashboard Role                      `json:"default_dashboard" gorm:"not null;size:20"`
	IsActive         UserStatus                `json:"is_active" gorm:"default:ACTIVE;size:20;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// RoleSet returns the roles as a plain slice.
func (u *User) RoleSet() []Role {
	return []Role(u.Roles)
}

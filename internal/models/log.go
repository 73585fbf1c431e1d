package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log is an append-only audit record. Writes are best-effort: a failed log
// write never fails the primary operation.
type Log struct {
	ID        string         `json:"id" gorm:"primaryKey;size:255"`
	UserID    string         `json:"user_id" gorm:"not null;size:255;index"`
	Action    string         `json:"action" gorm:"not null;size:100;index"`
	Context   datatypes.JSON `json:"context"`
	Timestamp time.Time      `json:"timestamp" gorm:"autoCreateTime;index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Log) TableName() string {
	return "logs"
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VideoStatus string

const (
	VideoApproved VideoStatus = "APPROVED"
	VideoPending  VideoStatus = "PENDING"
	VideoRejected VideoStatus = "REJECTED"
)

// ContentKind discriminates the items of a course's content feed. Videos and
// quizzes are separate rows with an explicit kind tag; there is no sentinel
// URL scheme.
type ContentKind string

const (
	ContentVideo ContentKind = "video"
	ContentQuiz  ContentKind = "quiz"
)

// Video is a course content item. Only APPROVED videos are visible to
// enrolled students; course teachers see every status.
type Video struct {
	ID          string      `json:"id" gorm:"primaryKey;size:255"`
	Title       string      `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description *string     `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	VideoURL    string      `json:"video_url" gorm:"not null;size:500" validate:"required,max=500"`
	CourseID    string      `json:"course_id" gorm:"not null;size:255;index"`
	UploadedBy  string      `json:"uploaded_by" gorm:"not null;size:255;index"`
	Status      VideoStatus `json:"status" gorm:"default:PENDING;size:20;index"`
	Deadline    *time.Time  `json:"deadline"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Video) TableName() string {
	return "videos"
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// QuizQuestion is one entry of a quiz's answer key. Answer indexes into
// Options.
type QuizQuestion struct {
	Text    string   `json:"text" validate:"required"`
	Options []string `json:"options" validate:"required,min=2"`
	Answer  int      `json:"answer" validate:"min=0"`
}

// QuizPayload is the stored question set, optionally grouped under a unit.
type QuizPayload struct {
	UnitID    *string        `json:"unit_id,omitempty"`
	UnitName  *string        `json:"unit_name,omitempty"`
	Questions []QuizQuestion `json:"questions"`
}

// NewQuizQuestions wraps a payload for JSONB storage.
func NewQuizQuestions(p QuizPayload) datatypes.JSONType[QuizPayload] {
	return datatypes.NewJSONType(p)
}

// AnswerKey returns the ordered list of correct option indices.
func (p QuizPayload) AnswerKey() []int {
	key := make([]int, len(p.Questions))
	for i, q := range p.Questions {
		key[i] = q.Answer
	}
	return key
}

// Quiz is either attached to a video (VideoID set) or standalone within a
// course (VideoID nil, CourseID always set).
type Quiz struct {
	ID       string  `json:"id" gorm:"primaryKey;size:255"`
	Title    string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	VideoID  *string `json:"video_id" gorm:"size:255;index"`
	CourseID string  `json:"course_id" gorm:"not null;size:255;index"`

	Questions datatypes.JSONType[QuizPayload] `json:"questions" gorm:"not null"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Video  *Video  `json:"video,omitempty" gorm:"foreignKey:VideoID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// QuizAttempt is created once per submission; the score is computed at
// submission time from the quiz's answer key and never recomputed.
type QuizAttempt struct {
	ID          string                   `json:"id" gorm:"primaryKey;size:255"`
	QuizID      string                   `json:"quiz_id" gorm:"not null;size:255;index"`
	UserID      string                   `json:"user_id" gorm:"not null;size:255;index"`
	Answers     datatypes.JSONSlice[int] `json:"answers"`
	Score       float64                  `json:"score" gorm:"not null"`
	MaxScore    float64                  `json:"max_score" gorm:"not null"`
	CompletedAt time.Time                `json:"completed_at" gorm:"autoCreateTime"`

	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

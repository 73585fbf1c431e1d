package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.Role       `json:"role"`
	Status    *models.UserStatus `json:"status"`
	Search    *string            `json:"search"` // matches name, email or uid
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "name", "email"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type CourseFilters struct {
	DeptID    *string `json:"dept_id"`
	CreatedBy *string `json:"created_by"`
	Search    *string `json:"search"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

type VideoFilters struct {
	Status     *models.VideoStatus `json:"status"`
	UploadedBy *string             `json:"uploaded_by"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type AnnouncementFilters struct {
	Targets   []models.AnnouncementTarget `json:"targets"`
	CourseIDs []string                    `json:"course_ids"`
	// SectionIDs narrows section-scoped announcements: within a matched
	// course, rows with a section_id are kept only when it is in this set.
	SectionIDs []string `json:"section_ids"`
	// IncludeGlobal keeps announcements without a course scope in the result.
	IncludeGlobal bool `json:"include_global"`
	// ActiveAt filters out announcements whose expiry date has passed.
	ActiveAt *time.Time `json:"active_at"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type LogFilters struct {
	UserID   *string    `json:"user_id"`
	Action   *string    `json:"action"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== STATISTICS STRUCTS =====

// PlatformStats backs the admin dashboard. Every number is a live aggregate.
type PlatformStats struct {
	TotalUsers       int64                        `json:"total_users"`
	ActiveUsers      int64                        `json:"active_users"`
	UsersByRole      map[models.Role]int64        `json:"users_by_role"`
	TotalDepartments int64                        `json:"total_departments"`
	TotalCourses     int64                        `json:"total_courses"`
	TotalSections    int64                        `json:"total_sections"`
	TotalEnrollments int64                        `json:"total_enrollments"`
	VideosByStatus   map[models.VideoStatus]int64 `json:"videos_by_status"`
	TotalQuizzes     int64                        `json:"total_quizzes"`
	TotalAttempts    int64                        `json:"total_attempts"`
}

// TeacherStats summarizes the sections a teacher runs.
type TeacherStats struct {
	SectionCount    int64   `json:"section_count"`
	StudentCount    int64   `json:"student_count"`
	VideoCount      int64   `json:"video_count"`
	QuizCount       int64   `json:"quiz_count"`
	PendingVideos   int64   `json:"pending_videos"`
	AverageScore    float64 `json:"average_score"`
}

// StudentStats summarizes a student's own activity.
type StudentStats struct {
	EnrollmentCount int64   `json:"enrollment_count"`
	AttemptCount    int64   `json:"attempt_count"`
	AverageScore    float64 `json:"average_score"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByUID(ctx context.Context, tx *gorm.DB, uid string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, dept *models.Department) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Department, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Department, error)
	Update(ctx context.Context, tx *gorm.DB, dept *models.Department) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Department, int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	GetByIDWithSections(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
}

type SectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, section *models.Section) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Section, error)
	// GetByIDForUpdate locks the section row for the rest of the transaction.
	// The enrollment capacity check depends on this lock.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Section, error)
	Update(ctx context.Context, tx *gorm.DB, section *models.Section) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Section, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Enrollment, error)
	Find(ctx context.Context, tx *gorm.DB, userID, sectionID string, role models.Role) (*models.Enrollment, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error)
	ListBySection(ctx context.Context, tx *gorm.DB, sectionID string, role *models.Role) ([]*models.Enrollment, error)
	// CountStudents counts STUDENT enrollments in a section. Run it against a
	// locked section row when enforcing capacity.
	CountStudents(ctx context.Context, tx *gorm.DB, sectionID string) (int64, error)
	// FindForCourse returns the caller's enrollments across all sections of a
	// course. Empty means not enrolled.
	FindForCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) ([]*models.Enrollment, error)
	// CourseIDsForUser returns the distinct courses the user is enrolled in.
	CourseIDsForUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error)
}

type VideoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, video *models.Video) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Video, error)
	Update(ctx context.Context, tx *gorm.DB, video *models.Video) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, filters VideoFilters) ([]*models.Video, int64, error)
	ListPending(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Video, int64, error)
}

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Quiz, error)
	ListByVideo(ctx context.Context, tx *gorm.DB, videoID string) ([]*models.Quiz, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error)
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizAttempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.QuizAttempt, error)
	FindByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) ([]*models.QuizAttempt, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *models.Announcement) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Announcement, error)
	Update(ctx context.Context, tx *gorm.DB, a *models.Announcement) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters AnnouncementFilters) ([]*models.Announcement, int64, error)
	ListBySender(ctx context.Context, tx *gorm.DB, senderID string, limit, offset int) ([]*models.Announcement, int64, error)
}

type LogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.Log) error
	List(ctx context.Context, tx *gorm.DB, filters LogFilters) ([]*models.Log, int64, error)
}

type DashboardRepository interface {
	GetPlatformStats(ctx context.Context, tx *gorm.DB) (*PlatformStats, error)
	GetTeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*TeacherStats, error)
	GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string) (*StudentStats, error)
}

package services

import (
	"context"
	"io"
	"time"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

// AuditRecorder records audit events. Recording is best-effort by contract:
// implementations must never surface failures to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, userID, action string, details map[string]interface{})
}

// ===== AUTH DTOs =====

type LoginRequest struct {
	// Identifier is the email or uid the user signs in with.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	auth.TokenPair
	User ProfileResponse `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ProfileResponse struct {
	ID               string            `json:"id"`
	UID              string            `json:"uid"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Roles            []models.Role     `json:"roles"`
	DefaultDashboard models.Role       `json:"default_dashboard"`
	IsActive         models.UserStatus `json:"is_active"`
}

// ===== USER DTOs =====

type CreateUserRequest struct {
	UID              string        `json:"uid" validate:"required,max=50"`
	Name             string        `json:"name" validate:"required,max=100"`
	Email            string        `json:"email" validate:"required,email"`
	Password         string        `json:"password" validate:"required,min=8"`
	Roles            []models.Role `json:"roles" validate:"required,min=1,dive,role"`
	DefaultDashboard models.Role   `json:"default_dashboard" validate:"required,role"`
}

type UpdateUserRequest struct {
	Name             *string       `json:"name" validate:"omitempty,max=100"`
	Roles            []models.Role `json:"roles" validate:"omitempty,min=1,dive,role"`
	DefaultDashboard *models.Role  `json:"default_dashboard" validate:"omitempty,role"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

// ===== DEPARTMENT DTOs =====

type CreateDepartmentRequest struct {
	DeptName string  `json:"dept_name" validate:"required,max=150"`
	DeanID   *string `json:"dean_id"`
}

type UpdateDepartmentRequest struct {
	DeptName *string `json:"dept_name" validate:"omitempty,max=150"`
}

type DepartmentListResponse struct {
	Departments []*models.Department `json:"departments"`
	Total       int64                `json:"total"`
}

// ===== COURSE / SECTION DTOs =====

type CreateCourseRequest struct {
	CourseName string `json:"course_name" validate:"required,max=200"`
	CourseCode string `json:"course_code" validate:"required,max=50"`
	DeptID     string `json:"dept_id" validate:"required"`
}

type UpdateCourseRequest struct {
	CourseName *string `json:"course_name" validate:"omitempty,max=200"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
}

type CreateSectionRequest struct {
	SectionName string `json:"section_name" validate:"required,max=100"`
	CourseID    string `json:"course_id" validate:"required"`
	Capacity    *int   `json:"capacity" validate:"omitempty,min=1,max=500"`
}

// ===== ENROLLMENT DTOs =====

type EnrollRequest struct {
	UserID    string      `json:"user_id" validate:"required"`
	SectionID string      `json:"section_id" validate:"required"`
	Role      models.Role `json:"role" validate:"required,enrollment_role"`
}

// ===== CONTENT DTOs =====

type CreateVideoRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	VideoURL    string     `json:"video_url" validate:"required,max=500"`
	CourseID    string     `json:"course_id" validate:"required"`
	Deadline    *time.Time `json:"deadline"`
}

type ReviewVideoRequest struct {
	Status models.VideoStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

type CreateQuizRequest struct {
	Title    string             `json:"title" validate:"required,max=200"`
	CourseID string             `json:"course_id" validate:"required"`
	VideoID  *string            `json:"video_id"`
	Payload  models.QuizPayload `json:"payload" validate:"required"`
}

// ContentItem is one entry of a course content feed, discriminated by Kind.
type ContentItem struct {
	Kind  models.ContentKind `json:"kind"`
	Video *models.Video      `json:"video,omitempty"`
	Quiz  *QuizView          `json:"quiz,omitempty"`
}

// QuizView is a quiz as shown to a student: the answer key is stripped.
type QuizView struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	VideoID   *string            `json:"video_id"`
	CourseID  string             `json:"course_id"`
	Questions []QuizQuestionView `json:"questions"`
	CreatedAt time.Time          `json:"created_at"`
}

type QuizQuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type CourseContentResponse struct {
	CourseID string        `json:"course_id"`
	Items    []ContentItem `json:"items"`
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

type AttemptResponse struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// ===== ANNOUNCEMENT DTOs =====

type CreateAnnouncementRequest struct {
	Title      string                    `json:"title" validate:"required,max=200"`
	Content    string                    `json:"content" validate:"required"`
	TargetRole models.AnnouncementTarget `json:"target_role" validate:"required,oneof=STUDENT TEACHER BOTH"`
	CourseID   *string                   `json:"course_id"`
	SectionID  *string                   `json:"section_id"`
	ExpiryDate *time.Time                `json:"expiry_date"`
}

type AnnouncementListResponse struct {
	Announcements []*models.Announcement `json:"announcements"`
	Total         int64                  `json:"total"`
}

// ===== IMPORT DTOs =====

type ImportUsersResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	// Refresh re-derives the principal from current store state, so a role
	// change or deactivation invalidates outstanding refresh tokens.
	Refresh(ctx context.Context, req *RefreshRequest) (*auth.TokenPair, error)
	Logout(ctx context.Context, principal auth.Principal)
	Me(ctx context.Context, principal auth.Principal) (*ProfileResponse, error)
	// ResolvePrincipal re-fetches the principal's backing user row. The auth
	// middleware calls this on every request.
	ResolvePrincipal(ctx context.Context, claims *auth.Claims) (auth.Principal, error)
}

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, actor auth.Principal) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest, actor auth.Principal) (*models.User, error)
	Deactivate(ctx context.Context, id string, actor auth.Principal) error
	Reactivate(ctx context.Context, id string, actor auth.Principal) error
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
}

type DepartmentService interface {
	Create(ctx context.Context, req *CreateDepartmentRequest, actor auth.Principal) (*models.Department, error)
	GetByID(ctx context.Context, id string) (*models.Department, error)
	Update(ctx context.Context, id string, req *UpdateDepartmentRequest, actor auth.Principal) (*models.Department, error)
	Delete(ctx context.Context, id string, actor auth.Principal) error
	List(ctx context.Context, limit, offset int) (*DepartmentListResponse, error)
	AssignDean(ctx context.Context, deptID, userID string, actor auth.Principal) (*models.Department, error)
	RemoveDean(ctx context.Context, deptID string, actor auth.Principal) (*models.Department, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, actor auth.Principal) (*models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetWithSections(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, actor auth.Principal) (*models.Course, error)
	Delete(ctx context.Context, id string, actor auth.Principal) error
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)

	CreateSection(ctx context.Context, req *CreateSectionRequest, actor auth.Principal) (*models.Section, error)
	DeleteSection(ctx context.Context, id string, actor auth.Principal) error
	ListSections(ctx context.Context, courseID string) ([]*models.Section, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, req *EnrollRequest, actor auth.Principal) (*models.Enrollment, error)
	Unenroll(ctx context.Context, enrollmentID string, actor auth.Principal) error
	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	ListBySection(ctx context.Context, sectionID string, role *models.Role) ([]*models.Enrollment, error)
}

type ContentService interface {
	CreateVideo(ctx context.Context, req *CreateVideoRequest, actor auth.Principal) (*models.Video, error)
	ReviewVideo(ctx context.Context, videoID string, req *ReviewVideoRequest, actor auth.Principal) (*models.Video, error)
	DeleteVideo(ctx context.Context, videoID string, actor auth.Principal) error
	ListPendingVideos(ctx context.Context, limit, offset int) ([]*models.Video, int64, error)

	CreateQuiz(ctx context.Context, req *CreateQuizRequest, actor auth.Principal) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string, actor auth.Principal) error

	// GetCourseContent resolves visibility for the principal: enrolled
	// students see APPROVED videos and all quizzes, enrolled teachers see
	// everything, anyone else is rejected with ErrNotEnrolled. Elevated
	// global roles (CC and above) bypass the enrollment check.
	GetCourseContent(ctx context.Context, courseID string, principal auth.Principal) (*CourseContentResponse, error)

	SubmitQuiz(ctx context.Context, quizID string, req *SubmitQuizRequest, principal auth.Principal) (*AttemptResponse, error)
	ListAttempts(ctx context.Context, quizID string, principal auth.Principal) ([]*models.QuizAttempt, error)
	MyAttempts(ctx context.Context, principal auth.Principal) ([]*models.QuizAttempt, error)
}

type AnnouncementService interface {
	Create(ctx context.Context, req *CreateAnnouncementRequest, actor auth.Principal) (*models.Announcement, error)
	Delete(ctx context.Context, id string, actor auth.Principal) error
	// ListVisible returns the announcements addressed to the principal:
	// audience match plus course scope derived from their enrollments.
	ListVisible(ctx context.Context, principal auth.Principal, limit, offset int) (*AnnouncementListResponse, error)
	ListBySender(ctx context.Context, senderID string, limit, offset int) (*AnnouncementListResponse, error)
}

type DashboardService interface {
	PlatformStats(ctx context.Context) (*repositories.PlatformStats, error)
	TeacherStats(ctx context.Context, teacherID string) (*repositories.TeacherStats, error)
	StudentStats(ctx context.Context, studentID string) (*repositories.StudentStats, error)
	ListLogs(ctx context.Context, filters repositories.LogFilters) ([]*models.Log, int64, error)
}

type ImportService interface {
	// ImportUsers reads an xlsx sheet of users (uid, name, email, password,
	// roles) and creates them row by row, collecting per-row failures.
	ImportUsers(ctx context.Context, r io.Reader, actor auth.Principal) (*ImportUsersResult, error)
}

// ServiceManager aggregates all services behind one injection point.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Department() DepartmentService
	Course() CourseService
	Enrollment() EnrollmentService
	Content() ContentService
	Announcement() AnnouncementService
	Dashboard() DashboardService
	Import() ImportService
}

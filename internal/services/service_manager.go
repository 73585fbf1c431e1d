package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/config"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

// ServiceManagerConfig carries the cross-cutting dependencies every service
// is built from.
type ServiceManagerConfig struct {
	Repo       repositories.Repository
	DB         *gorm.DB
	Logger     *slog.Logger
	Validator  *validator.Validator
	Tokens     *auth.TokenIssuer
	SuperAdmin config.SuperAdminConfig
	Audit      AuditRecorder
}

type serviceManager struct {
	authService         AuthService
	userService         UserService
	departmentService   DepartmentService
	courseService       CourseService
	enrollmentService   EnrollmentService
	contentService      ContentService
	announcementService AnnouncementService
	dashboardService    DashboardService
	importService       ImportService
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	if cfg.Audit == nil {
		cfg.Audit = NopAuditRecorder{}
	}

	userSvc := NewUserService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit)

	return &serviceManager{
		authService:         NewAuthService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Tokens, cfg.SuperAdmin, cfg.Audit),
		userService:         userSvc,
		departmentService:   NewDepartmentService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit),
		courseService:       NewCourseService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit),
		enrollmentService:   NewEnrollmentService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit),
		contentService:      NewContentService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit),
		announcementService: NewAnnouncementService(cfg.Repo, cfg.DB, cfg.Logger, cfg.Validator, cfg.Audit),
		dashboardService:    NewDashboardService(cfg.Repo, cfg.DB, cfg.Logger),
		importService:       NewImportService(userSvc, cfg.Logger, cfg.Audit),
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.authService }
func (m *serviceManager) User() UserService                 { return m.userService }
func (m *serviceManager) Department() DepartmentService     { return m.departmentService }
func (m *serviceManager) Course() CourseService             { return m.courseService }
func (m *serviceManager) Enrollment() EnrollmentService     { return m.enrollmentService }
func (m *serviceManager) Content() ContentService           { return m.contentService }
func (m *serviceManager) Announcement() AnnouncementService { return m.announcementService }
func (m *serviceManager) Dashboard() DashboardService       { return m.dashboardService }
func (m *serviceManager) Import() ImportService             { return m.importService }

// NopAuditRecorder discards audit events; used in tests and as a fallback.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(_ context.Context, _, _ string, _ map[string]interface{}) {}

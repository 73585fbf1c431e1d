package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	adminHandler   *AdminHandler
	deanHandler    *DeanHandler
	teacherHandler *TeacherHandler
	studentHandler *StudentHandler
	authMiddleware *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenIssuer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		adminHandler:   NewAdminHandler(serviceManager.User(), serviceManager.Import(), serviceManager.Dashboard(), logger),
		deanHandler:    NewDeanHandler(serviceManager.Department(), serviceManager.Course(), serviceManager.Enrollment(), logger),
		teacherHandler: NewTeacherHandler(serviceManager.Content(), serviceManager.Announcement(), serviceManager.Enrollment(), serviceManager.Dashboard(), logger),
		studentHandler: NewStudentHandler(serviceManager.Content(), serviceManager.Announcement(), serviceManager.Enrollment(), serviceManager.Dashboard(), logger),
		authMiddleware: NewAuthMiddleware(tokens, serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes. Route groups are gated by the minimum
// rank their whole surface requires; operations with a stricter requirement
// enforce it in the service layer.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Auth routes: login and refresh are public, the rest require a token.
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/refresh", hm.authHandler.Refresh)
		authRoutes.POST("/logout", hm.authMiddleware.Authenticate(), hm.authHandler.Logout)
		authRoutes.GET("/me", hm.authMiddleware.Authenticate(), hm.authHandler.Me)
	}

	// Admin routes - user management, import, logs and platform stats.
	admin := api.Group("/admin")
	admin.Use(hm.authMiddleware.Authenticate(), hm.authMiddleware.RequireRole(models.RoleSuperAdmin))
	{
		admin.POST("/users", hm.adminHandler.CreateUser)
		admin.GET("/users", hm.adminHandler.ListUsers)
		admin.GET("/users/:id", hm.adminHandler.GetUser)
		admin.PUT("/users/:id", hm.adminHandler.UpdateUser)
		admin.POST("/users/:id/deactivate", hm.adminHandler.DeactivateUser)
		admin.POST("/users/:id/reactivate", hm.adminHandler.ReactivateUser)
		admin.POST("/users/import", hm.adminHandler.ImportUsers)

		admin.GET("/stats", hm.adminHandler.PlatformStats)
		admin.GET("/logs", hm.adminHandler.ListLogs)
	}

	// Dean routes - departments, courses, sections and enrollments.
	dean := api.Group("/dean")
	dean.Use(hm.authMiddleware.Authenticate(), hm.authMiddleware.RequireRole(models.RoleAdmin))
	{
		dean.POST("/departments", hm.deanHandler.CreateDepartment)
		dean.GET("/departments", hm.deanHandler.ListDepartments)
		dean.GET("/departments/:id", hm.deanHandler.GetDepartment)
		dean.PUT("/departments/:id", hm.deanHandler.UpdateDepartment)
		dean.DELETE("/departments/:id", hm.deanHandler.DeleteDepartment)
		dean.POST("/departments/:id/dean", hm.deanHandler.AssignDean)
		dean.DELETE("/departments/:id/dean", hm.deanHandler.RemoveDean)

		dean.POST("/courses", hm.deanHandler.CreateCourse)
		dean.GET("/courses", hm.deanHandler.ListCourses)
		dean.GET("/courses/:id", hm.deanHandler.GetCourse)
		dean.PUT("/courses/:id", hm.deanHandler.UpdateCourse)
		dean.DELETE("/courses/:id", hm.deanHandler.DeleteCourse)
		dean.GET("/courses/:id/sections", hm.deanHandler.ListSections)

		dean.POST("/sections", hm.deanHandler.CreateSection)
		dean.DELETE("/sections/:id", hm.deanHandler.DeleteSection)

		dean.POST("/enrollments", hm.deanHandler.Enroll)
		dean.DELETE("/enrollments/:id", hm.deanHandler.Unenroll)
	}

	// Teacher routes - content authoring, review, rosters and announcements.
	teacher := api.Group("/teacher")
	teacher.Use(hm.authMiddleware.Authenticate(), hm.authMiddleware.RequireRole(models.RoleTeacher))
	{
		teacher.POST("/videos", hm.teacherHandler.CreateVideo)
		teacher.DELETE("/videos/:id", hm.teacherHandler.DeleteVideo)
		teacher.PUT("/videos/:id/review", hm.teacherHandler.ReviewVideo)
		teacher.GET("/videos/pending", hm.teacherHandler.ListPendingVideos)

		teacher.POST("/quizzes", hm.teacherHandler.CreateQuiz)
		teacher.DELETE("/quizzes/:id", hm.teacherHandler.DeleteQuiz)
		teacher.GET("/quizzes/:id/attempts", hm.teacherHandler.ListQuizAttempts)

		teacher.GET("/sections/:id/roster", hm.teacherHandler.SectionRoster)

		teacher.POST("/announcements", hm.teacherHandler.CreateAnnouncement)
		teacher.GET("/announcements", hm.teacherHandler.MyAnnouncements)
		teacher.DELETE("/announcements/:id", hm.teacherHandler.DeleteAnnouncement)

		teacher.GET("/stats", hm.teacherHandler.Stats)
	}

	// Student routes - every authenticated user ranks at or above STUDENT,
	// so this group effectively requires only a valid session. Content
	// visibility is decided per course by the services.
	student := api.Group("/student")
	student.Use(hm.authMiddleware.Authenticate(), hm.authMiddleware.RequireRole(models.RoleStudent))
	{
		student.GET("/courses/:id/content", hm.studentHandler.CourseContent)
		student.POST("/quizzes/:id/attempts", hm.studentHandler.SubmitQuiz)
		student.GET("/attempts", hm.studentHandler.MyAttempts)
		student.GET("/announcements", hm.studentHandler.Announcements)
		student.GET("/enrollments", hm.studentHandler.MyEnrollments)
		student.GET("/stats", hm.studentHandler.Stats)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// TeacherHandler serves the teaching surface: content authoring, video
// review, section rosters, announcements and teacher statistics.
type TeacherHandler struct {
	BaseHandler
	contentService      services.ContentService
	announcementService services.AnnouncementService
	enrollmentService   services.EnrollmentService
	dashboardService    services.DashboardService
}

func NewTeacherHandler(contentService services.ContentService, announcementService services.AnnouncementService, enrollmentService services.EnrollmentService, dashboardService services.DashboardService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler:         NewBaseHandler(logger),
		contentService:      contentService,
		announcementService: announcementService,
		enrollmentService:   enrollmentService,
		dashboardService:    dashboardService,
	}
}

// ===== videos =====

func (h *TeacherHandler) CreateVideo(c *gin.Context) {
	var req services.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	video, err := h.contentService.CreateVideo(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *TeacherHandler) DeleteVideo(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.contentService.DeleteVideo(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}

// ReviewVideo approves or rejects a pending video. The service enforces the
// CC-or-above requirement.
func (h *TeacherHandler) ReviewVideo(c *gin.Context) {
	var req services.ReviewVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	video, err := h.contentService.ReviewVideo(c.Request.Context(), c.Param("id"), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *TeacherHandler) ListPendingVideos(c *gin.Context) {
	videos, total, err := h.contentService.ListPendingVideos(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos, "total": total})
}

// ===== quizzes =====

func (h *TeacherHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	quiz, err := h.contentService.CreateQuiz(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *TeacherHandler) DeleteQuiz(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.contentService.DeleteQuiz(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quiz deleted"})
}

// ListQuizAttempts returns every attempt on one quiz, for graders.
func (h *TeacherHandler) ListQuizAttempts(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	attempts, err := h.contentService.ListAttempts(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// ===== rosters =====

func (h *TeacherHandler) SectionRoster(c *gin.Context) {
	var role *models.Role
	if r := c.Query("role"); r != "" {
		tag := models.Role(r)
		role = &tag
	}

	enrollments, err := h.enrollmentService.ListBySection(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// ===== announcements =====

func (h *TeacherHandler) CreateAnnouncement(c *gin.Context) {
	var req services.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	ann, err := h.announcementService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ann)
}

func (h *TeacherHandler) DeleteAnnouncement(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.announcementService.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}

func (h *TeacherHandler) MyAnnouncements(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	resp, err := h.announcementService.ListBySender(c.Request.Context(), principal.UserID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===== stats =====

func (h *TeacherHandler) Stats(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.TeacherStats(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

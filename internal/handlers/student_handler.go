package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// StudentHandler serves the learning surface: course content, quiz attempts,
// announcements and personal statistics.
type StudentHandler struct {
	BaseHandler
	contentService      services.ContentService
	announcementService services.AnnouncementService
	enrollmentService   services.EnrollmentService
	dashboardService    services.DashboardService
}

func NewStudentHandler(contentService services.ContentService, announcementService services.AnnouncementService, enrollmentService services.EnrollmentService, dashboardService services.DashboardService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:         NewBaseHandler(logger),
		contentService:      contentService,
		announcementService: announcementService,
		enrollmentService:   enrollmentService,
		dashboardService:    dashboardService,
	}
}

// CourseContent returns the content feed visible to the caller for one
// course. Visibility depends on their enrollment role.
func (h *StudentHandler) CourseContent(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	content, err := h.contentService.GetCourseContent(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *StudentHandler) SubmitQuiz(c *gin.Context) {
	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	attempt, err := h.contentService.SubmitQuiz(c.Request.Context(), c.Param("id"), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (h *StudentHandler) MyAttempts(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	attempts, err := h.contentService.MyAttempts(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// Announcements lists the announcements addressed to the caller.
func (h *StudentHandler) Announcements(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	resp, err := h.announcementService.ListVisible(c.Request.Context(), principal, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StudentHandler) MyEnrollments(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListByUser(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *StudentHandler) Stats(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.StudentStats(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

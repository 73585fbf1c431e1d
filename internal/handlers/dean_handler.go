package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// DeanHandler serves the dean/admin surface: departments, courses and
// sections.
type DeanHandler struct {
	BaseHandler
	departmentService services.DepartmentService
	courseService     services.CourseService
	enrollmentService services.EnrollmentService
}

func NewDeanHandler(departmentService services.DepartmentService, courseService services.CourseService, enrollmentService services.EnrollmentService, logger utils.Logger) *DeanHandler {
	return &DeanHandler{
		BaseHandler:       NewBaseHandler(logger),
		departmentService: departmentService,
		courseService:     courseService,
		enrollmentService: enrollmentService,
	}
}

// ===== departments =====

func (h *DeanHandler) CreateDepartment(c *gin.Context) {
	var req services.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	dept, err := h.departmentService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

func (h *DeanHandler) GetDepartment(c *gin.Context) {
	dept, err := h.departmentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DeanHandler) UpdateDepartment(c *gin.Context) {
	var req services.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	dept, err := h.departmentService.Update(c.Request.Context(), c.Param("id"), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DeanHandler) DeleteDepartment(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.departmentService.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}

func (h *DeanHandler) ListDepartments(c *gin.Context) {
	resp, err := h.departmentService.List(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type assignDeanRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *DeanHandler) AssignDean(c *gin.Context) {
	var req assignDeanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	dept, err := h.departmentService.AssignDean(c.Request.Context(), c.Param("id"), req.UserID, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DeanHandler) RemoveDean(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	dept, err := h.departmentService.RemoveDean(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

// ===== courses =====

func (h *DeanHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *DeanHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetWithSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *DeanHandler) UpdateCourse(c *gin.Context) {
	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), c.Param("id"), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *DeanHandler) DeleteCourse(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (h *DeanHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if deptID := c.Query("dept_id"); deptID != "" {
		filters.DeptID = &deptID
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}

	resp, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===== sections =====

func (h *DeanHandler) CreateSection(c *gin.Context) {
	var req services.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	section, err := h.courseService.CreateSection(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *DeanHandler) DeleteSection(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.courseService.DeleteSection(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section deleted"})
}

func (h *DeanHandler) ListSections(c *gin.Context) {
	sections, err := h.courseService.ListSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// ===== enrollments =====

func (h *DeanHandler) Enroll(c *gin.Context) {
	var req services.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *DeanHandler) Unenroll(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.enrollmentService.Unenroll(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enrollment removed"})
}

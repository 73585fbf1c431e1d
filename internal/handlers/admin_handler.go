package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// AdminHandler serves the superadmin surface: user management, bulk import,
// audit logs and platform statistics.
type AdminHandler struct {
	BaseHandler
	userService      services.UserService
	importService    services.ImportService
	dashboardService services.DashboardService
}

func NewAdminHandler(userService services.UserService, importService services.ImportService, dashboardService services.DashboardService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:      NewBaseHandler(logger),
		userService:      userService,
		importService:    importService,
		dashboardService: dashboardService,
	}
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", Details: err.Error()})
		return
	}
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.userService.Deactivate(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deactivated"})
}

func (h *AdminHandler) ReactivateUser(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}
	if err := h.userService.Reactivate(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user reactivated"})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		r := models.Role(role)
		filters.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := models.UserStatus(status)
		filters.Status = &s
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}

	resp, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportUsers bulk-creates users from an uploaded xlsx file.
func (h *AdminHandler) ImportUsers(c *gin.Context) {
	principal, ok := h.principalFrom(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file upload", Details: err.Error()})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportUsers(c.Request.Context(), file, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) PlatformStats(c *gin.Context) {
	stats, err := h.dashboardService.PlatformStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListLogs(c *gin.Context) {
	filters := repositories.LogFilters{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	logs, total, err := h.dashboardService.ListLogs(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

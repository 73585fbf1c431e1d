package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// ErrorResponse is the uniform error payload of the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// principalKey is the gin context key the auth middleware stores the
// resolved principal under.
const principalKey = "principal"

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// principalFrom pulls the authenticated principal from the context. Missing
// means the route was wired without the auth middleware, which is a bug, so
// the request is rejected rather than treated as anonymous.
func (h *BaseHandler) principalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return auth.Principal{}, false
	}
	principal, ok := v.(auth.Principal)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return auth.Principal{}, false
	}
	return principal, true
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUserInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case services.IsPermissionError(err), errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case services.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		utils.FromContext(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// AuthMiddleware authenticates requests and enforces the role hierarchy.
type AuthMiddleware struct {
	tokens      *auth.TokenIssuer
	authService services.AuthService
	logger      utils.Logger
}

func NewAuthMiddleware(tokens *auth.TokenIssuer, authService services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, authService: authService, logger: logger}
}

// Authenticate verifies the bearer token and re-resolves the principal from
// the store on every request. Claims are only trusted for identity; roles
// and active status always come from current state, so a deactivation or
// role change takes effect on the user's next request, not at token expiry.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "malformed authorization header"})
			return
		}

		claims, err := m.tokens.VerifyAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
			return
		}

		principal, err := m.authService.ResolvePrincipal(c.Request.Context(), claims)
		if err != nil {
			switch {
			case err == services.ErrUserInactive:
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "user not found or inactive"})
			case err == services.ErrInvalidToken:
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
			default:
				utils.FromContext(c, m.logger).Error("Failed to resolve principal", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID)
		c.Next()
	}
}

// RequireRole gates a route group on the rank hierarchy: the principal's
// highest role must rank at or above the minimum. There is deliberately no
// allowed-role-list variant.
func (m *AuthMiddleware) RequireRole(minimum models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(principalKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
			return
		}
		principal, ok := v.(auth.Principal)
		if !ok || !principal.HasRole(minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "insufficient role"})
			return
		}
		c.Next()
	}
}

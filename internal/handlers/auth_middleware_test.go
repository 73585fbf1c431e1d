package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/services"
	"github.com/campushub/lms-service/internal/utils"
)

// stubAuthService resolves principals from a fixed map, standing in for the
// store-backed lookup the real service performs.
type stubAuthService struct {
	principals map[string]auth.Principal
	inactive   map[string]bool
}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuthService) Refresh(ctx context.Context, req *services.RefreshRequest) (*auth.TokenPair, error) {
	return nil, services.ErrInvalidToken
}

func (s *stubAuthService) Logout(ctx context.Context, principal auth.Principal) {}

func (s *stubAuthService) Me(ctx context.Context, principal auth.Principal) (*services.ProfileResponse, error) {
	return nil, services.ErrUserNotFound
}

func (s *stubAuthService) ResolvePrincipal(ctx context.Context, claims *auth.Claims) (auth.Principal, error) {
	if s.inactive[claims.Subject] {
		return auth.Principal{}, services.ErrUserInactive
	}
	p, ok := s.principals[claims.Subject]
	if !ok {
		return auth.Principal{}, services.ErrInvalidToken
	}
	return p, nil
}

func testUtilsLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func middlewareFixture(t *testing.T) (*AuthMiddleware, *auth.TokenIssuer, *stubAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	authSvc := &stubAuthService{
		principals: map[string]auth.Principal{},
		inactive:   map[string]bool{},
	}
	return NewAuthMiddleware(tokens, authSvc, testUtilsLogger()), tokens, authSvc
}

func protectedRouter(m *AuthMiddleware, minimum models.Role) *gin.Engine {
	router := gin.New()
	router.GET("/protected", m.Authenticate(), m.RequireRole(minimum), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	m, _, _ := middlewareFixture(t)
	router := protectedRouter(m, models.RoleStudent)

	if w := doRequest(router, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: expected 401, got %d", w.Code)
	}

	if w := doRequest(router, "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	m, tokens, authSvc := middlewareFixture(t)
	router := protectedRouter(m, models.RoleStudent)

	principal := auth.Principal{
		UserID:           "u1",
		Email:            "s1@university.edu",
		Roles:            []models.Role{models.RoleStudent},
		DefaultDashboard: models.RoleStudent,
	}
	authSvc.principals["u1"] = principal

	pair, err := tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := doRequest(router, pair.AccessToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthenticateRejectsRefreshTokenOnAccessRoute(t *testing.T) {
	m, tokens, authSvc := middlewareFixture(t)
	router := protectedRouter(m, models.RoleStudent)

	principal := auth.Principal{UserID: "u1", Roles: []models.Role{models.RoleStudent}}
	authSvc.principals["u1"] = principal

	pair, err := tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := doRequest(router, pair.RefreshToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token on access route: expected 401, got %d", w.Code)
	}
}

// A valid token must not outlive a deactivation: the middleware re-resolves
// the principal, so the very next request is rejected.
func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	m, tokens, authSvc := middlewareFixture(t)
	router := protectedRouter(m, models.RoleStudent)

	principal := auth.Principal{UserID: "u1", Roles: []models.Role{models.RoleStudent}}
	authSvc.principals["u1"] = principal

	pair, err := tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := doRequest(router, pair.AccessToken); w.Code != http.StatusOK {
		t.Fatalf("before deactivation: expected 200, got %d", w.Code)
	}

	authSvc.inactive["u1"] = true
	if w := doRequest(router, pair.AccessToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("after deactivation: expected 401, got %d", w.Code)
	}
}

func TestRequireRoleGatesByRank(t *testing.T) {
	m, tokens, authSvc := middlewareFixture(t)

	teacher := auth.Principal{UserID: "t1", Roles: []models.Role{models.RoleTeacher}}
	hod := auth.Principal{UserID: "h1", Roles: []models.Role{models.RoleHOD}}
	authSvc.principals["t1"] = teacher
	authSvc.principals["h1"] = hod

	adminOnly := protectedRouter(m, models.RoleAdmin)
	teacherUp := protectedRouter(m, models.RoleTeacher)

	teacherPair, err := tokens.Issue(teacher)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	hodPair, err := tokens.Issue(hod)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if w := doRequest(adminOnly, teacherPair.AccessToken); w.Code != http.StatusForbidden {
		t.Fatalf("teacher on admin route: expected 403, got %d", w.Code)
	}
	if w := doRequest(adminOnly, hodPair.AccessToken); w.Code != http.StatusForbidden {
		t.Fatalf("hod on admin route: expected 403, got %d", w.Code)
	}
	if w := doRequest(teacherUp, hodPair.AccessToken); w.Code != http.StatusOK {
		t.Fatalf("hod outranks teacher: expected 200, got %d", w.Code)
	}
	if w := doRequest(teacherUp, teacherPair.AccessToken); w.Code != http.StatusOK {
		t.Fatalf("teacher on teacher route: expected 200, got %d", w.Code)
	}
}

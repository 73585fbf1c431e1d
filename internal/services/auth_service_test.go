package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/config"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/validator"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeRepo, *auth.TokenIssuer) {
	t.Helper()
	repo := newFakeRepo()
	tokens := auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(repo, nil, testLogger(), validator.New(), tokens, config.SuperAdminConfig{
		UID:      "root",
		Password: "root-password",
	}, NopAuditRecorder{})
	return svc, repo, tokens
}

func seedUser(t *testing.T, repo *fakeRepo, uid, email, password string, roles ...models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	highest, err := models.HighestRole(roles)
	if err != nil {
		t.Fatalf("HighestRole() error = %v", err)
	}
	user := &models.User{
		UID:              uid,
		Name:             "Test User",
		Email:            email,
		PasswordHash:     hash,
		Roles:            roles,
		DefaultDashboard: highest,
		IsActive:         models.UserActive,
	}
	if err := repo.User().Create(context.Background(), nil, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginByEmailAndUID(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)

	for _, identifier := range []string{"teacher@uni.edu", "t001"} {
		resp, err := svc.Login(context.Background(), &LoginRequest{Identifier: identifier, Password: "s3cret-pass"})
		if err != nil {
			t.Fatalf("Login(%q) error = %v", identifier, err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Errorf("Login(%q) returned empty tokens", identifier)
		}
		if resp.User.UID != "t001" {
			t.Errorf("Login(%q) user = %q, want t001", identifier, resp.User.UID)
		}
	}
}

func TestLoginRejectsBadPasswordAndUnknownUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)

	// Wrong password and unknown user must be indistinguishable.
	for _, req := range []*LoginRequest{
		{Identifier: "teacher@uni.edu", Password: "wrong"},
		{Identifier: "nobody@uni.edu", Password: "s3cret-pass"},
	} {
		if _, err := svc.Login(context.Background(), req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) error = %v, want ErrInvalidCredentials", req.Identifier, err)
		}
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)
	user.IsActive = models.UserInactive

	if _, err := svc.Login(context.Background(), &LoginRequest{Identifier: "t001", Password: "s3cret-pass"}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("Login() error = %v, want ErrUserInactive", err)
	}
}

func TestSuperAdminLogin(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), &LoginRequest{Identifier: "root", Password: "root-password"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := tokens.VerifyAccess(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims.Subject != auth.SuperAdminID {
		t.Errorf("Subject = %q, want %q", claims.Subject, auth.SuperAdminID)
	}
	principal := claims.Principal()
	if !principal.Builtin || !principal.HasRole(models.RoleSuperAdmin) {
		t.Errorf("principal = %+v, want builtin superadmin", principal)
	}
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)

	login, err := svc.Login(context.Background(), &LoginRequest{Identifier: "t001", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Promote after login; the refreshed token must carry the new role set.
	user.Roles = []models.Role{models.RoleTeacher, models.RoleHOD}

	pair, err := svc.Refresh(context.Background(), &RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	issuer := authIssuerOf(t, svc)
	claims, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if !models.HasHigherOrEqualRole(claims.Roles, models.RoleHOD) {
		t.Errorf("refreshed roles = %v, want to include HOD", claims.Roles)
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)

	login, err := svc.Login(context.Background(), &LoginRequest{Identifier: "t001", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Deactivation invalidates outstanding refresh tokens immediately, and
	// the rejection reads as a plain invalid token.
	user.IsActive = models.UserInactive

	if _, err := svc.Refresh(context.Background(), &RefreshRequest{RefreshToken: login.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() error = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "t001", "teacher@uni.edu", "s3cret-pass", models.RoleTeacher)

	login, err := svc.Login(context.Background(), &LoginRequest{Identifier: "t001", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// The token classes are signed with distinct secrets.
	if _, err := svc.Refresh(context.Background(), &RefreshRequest{RefreshToken: login.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh(access token) error = %v, want ErrInvalidToken", err)
	}
}

func authIssuerOf(t *testing.T, svc AuthService) *auth.TokenIssuer {
	t.Helper()
	impl, ok := svc.(*authService)
	if !ok {
		t.Fatalf("unexpected AuthService implementation %T", svc)
	}
	return impl.tokens
}

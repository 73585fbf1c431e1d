package auth

import (
	"testing"
	"time"

	"github.com/campushub/lms-service/internal/models"
)

func testPrincipal() Principal {
	return Principal{
		UserID:           "user-1",
		Email:            "hod@university.edu",
		Roles:            []models.Role{models.RoleHOD, models.RoleTeacher},
		DefaultDashboard: models.RoleHOD,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	p := claims.Principal()
	if p.UserID != "user-1" || p.Email != "hod@university.edu" {
		t.Errorf("round-tripped identity = %+v", p)
	}
	if len(p.Roles) != 2 || p.Roles[0] != models.RoleHOD || p.Roles[1] != models.RoleTeacher {
		t.Errorf("round-tripped roles = %v", p.Roles)
	}
	if p.DefaultDashboard != models.RoleHOD {
		t.Errorf("round-tripped dashboard = %v", p.DefaultDashboard)
	}
	if p.Builtin {
		t.Error("database-backed principal flagged builtin")
	}

	if _, err := issuer.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
}

func TestTokenKeysAreDistinct(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	pair, err := issuer.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// A refresh token must never verify as an access token and vice versa.
	if _, err := issuer.VerifyAccess(pair.RefreshToken); err == nil {
		t.Error("refresh token verified with access secret")
	}
	if _, err := issuer.VerifyRefresh(pair.AccessToken); err == nil {
		t.Error("access token verified with refresh secret")
	}
}

func TestTokenWrongKeyFails(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	other := NewTokenIssuer("other-secret", "other-refresh", 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := other.VerifyAccess(pair.AccessToken); err == nil {
		t.Error("token signed with a different key verified")
	}
}

func TestExpiredTokenFails(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	pair, err := issuer.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := issuer.VerifyAccess(pair.AccessToken); err == nil {
		t.Error("expired access token verified")
	}
}

func TestSuperAdminPrincipal(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	pair, err := issuer.Issue(SuperAdminPrincipal())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	p := claims.Principal()
	if !p.Builtin {
		t.Error("superadmin sentinel not flagged builtin")
	}
	if !p.HasRole(models.RoleSuperAdmin) {
		t.Error("superadmin principal does not satisfy SUPERADMIN")
	}
}

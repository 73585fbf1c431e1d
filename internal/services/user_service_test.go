package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/validator"
)

func newUserFixture(t *testing.T) (UserService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewUserService(repo, nil, testLogger(), validator.New(), NopAuditRecorder{})
	return svc, repo
}

func adminPrincipal() auth.Principal {
	return auth.Principal{UserID: "admin1", Roles: []models.Role{models.RoleAdmin}, DefaultDashboard: models.RoleAdmin}
}

func TestCreateUserValidatesRoleSet(t *testing.T) {
	svc, _ := newUserFixture(t)

	// Default dashboard must be one of the user's roles.
	_, err := svc.Create(context.Background(), &CreateUserRequest{
		UID:              "s001",
		Name:             "Student",
		Email:            "s001@uni.edu",
		Password:         "password1",
		Roles:            []models.Role{models.RoleStudent},
		DefaultDashboard: models.RoleTeacher,
	}, adminPrincipal())
	if !IsValidationError(err) {
		t.Errorf("Create() error = %v, want validation error", err)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	svc, _ := newUserFixture(t)

	req := &CreateUserRequest{
		UID:              "s001",
		Name:             "Student",
		Email:            "s001@uni.edu",
		Password:         "password1",
		Roles:            []models.Role{models.RoleStudent},
		DefaultDashboard: models.RoleStudent,
	}
	if _, err := svc.Create(context.Background(), req, adminPrincipal()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := *req
	dup.UID = "s002"
	if _, err := svc.Create(context.Background(), &dup, adminPrincipal()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Create(same email) error = %v, want ErrEmailTaken", err)
	}

	dup = *req
	dup.Email = "other@uni.edu"
	if _, err := svc.Create(context.Background(), &dup, adminPrincipal()); !errors.Is(err, ErrUIDTaken) {
		t.Errorf("Create(same uid) error = %v, want ErrUIDTaken", err)
	}
}

func TestUpdateRolesRecomputesDefaultDashboard(t *testing.T) {
	svc, repo := newUserFixture(t)
	repo.users["u1"] = &models.User{
		ID:               "u1",
		UID:              "t001",
		Name:             "Teacher",
		Email:            "t001@uni.edu",
		Roles:            []models.Role{models.RoleTeacher, models.RoleCC},
		DefaultDashboard: models.RoleCC,
		IsActive:         models.UserActive,
	}

	// Dropping the CC role orphans the default dashboard; it falls back to
	// the highest remaining role.
	updated, err := svc.Update(context.Background(), "u1", &UpdateUserRequest{
		Roles: []models.Role{models.RoleTeacher},
	}, adminPrincipal())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.DefaultDashboard != models.RoleTeacher {
		t.Errorf("DefaultDashboard = %v, want TEACHER", updated.DefaultDashboard)
	}
}

func TestDeactivateGuards(t *testing.T) {
	svc, repo := newUserFixture(t)
	repo.users["u1"] = &models.User{
		ID: "u1", UID: "s001", Name: "S", Email: "s@uni.edu",
		Roles: []models.Role{models.RoleStudent}, DefaultDashboard: models.RoleStudent,
		IsActive: models.UserActive,
	}

	// Actors cannot deactivate themselves.
	self := auth.Principal{UserID: "u1", Roles: []models.Role{models.RoleAdmin}, DefaultDashboard: models.RoleAdmin}
	if err := svc.Deactivate(context.Background(), "u1", self); !IsPermissionError(err) {
		t.Errorf("Deactivate(self) error = %v, want permission error", err)
	}

	if err := svc.Deactivate(context.Background(), "u1", adminPrincipal()); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if repo.users["u1"].IsActive != models.UserInactive {
		t.Errorf("user status = %v, want INACTIVE", repo.users["u1"].IsActive)
	}

	if err := svc.Deactivate(context.Background(), "missing", adminPrincipal()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Deactivate(missing) error = %v, want ErrUserNotFound", err)
	}
}

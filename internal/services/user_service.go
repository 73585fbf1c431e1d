package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor auth.Principal) (*models.User, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("user.create", "requires ADMIN role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}
	if err := s.validator.ValidateRoles(req.Roles, req.DefaultDashboard); err != nil {
		return nil, NewValidationError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UID:              req.UID,
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     hash,
		Roles:            req.Roles,
		DefaultDashboard: req.DefaultDashboard,
		IsActive:         models.UserActive,
	}

	// The uniqueness pre-checks give friendly errors; the unique indexes on
	// email and uid are the real guarantee under concurrency.
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.User().GetByEmail(ctx, nil, req.Email); err == nil {
			return ErrEmailTaken
		} else if !repositories.IsNotFoundError(err) {
			return err
		}
		if _, err := txRepo.User().GetByUID(ctx, nil, req.UID); err == nil {
			return ErrUIDTaken
		} else if !repositories.IsNotFoundError(err) {
			return err
		}
		return txRepo.User().Create(ctx, nil, user)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "uid", user.UID, "actor", actor.UserID)
	s.audit.Record(ctx, actor.UserID, "user.create", map[string]interface{}{"target": user.ID, "uid": user.UID})
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, req *UpdateUserRequest, actor auth.Principal) (*models.User, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("user.update", "requires ADMIN role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Roles != nil {
		user.Roles = req.Roles
		// A role update may orphan the default dashboard; fall back to the
		// highest remaining role.
		if !containsRole(req.Roles, user.DefaultDashboard) {
			highest, err := models.HighestRole(req.Roles)
			if err != nil {
				return nil, NewValidationError(err)
			}
			user.DefaultDashboard = highest
		}
	}
	if req.DefaultDashboard != nil {
		user.DefaultDashboard = *req.DefaultDashboard
	}
	if err := s.validator.ValidateRoles(user.RoleSet(), user.DefaultDashboard); err != nil {
		return nil, NewValidationError(err)
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "user.update", map[string]interface{}{"target": user.ID})
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, id string, actor auth.Principal) error {
	return s.setStatus(ctx, id, models.UserInactive, "user.deactivate", actor)
}

func (s *userService) Reactivate(ctx context.Context, id string, actor auth.Principal) error {
	return s.setStatus(ctx, id, models.UserActive, "user.reactivate", actor)
}

func (s *userService) setStatus(ctx context.Context, id string, status models.UserStatus, action string, actor auth.Principal) error {
	if !actor.HasRole(models.RoleAdmin) {
		return NewPermissionError(action, "requires ADMIN role or above")
	}
	if actor.UserID == id {
		return NewPermissionError(action, "cannot change own status")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsActive == status {
		return nil
	}

	user.IsActive = status
	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.logger.Info("User status changed", "user_id", id, "status", status, "actor", actor.UserID)
	s.audit.Record(ctx, actor.UserID, action, map[string]interface{}{"target": id})
	return nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

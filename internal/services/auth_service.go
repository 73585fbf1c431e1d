package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/config"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

type authService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	tokens     *auth.TokenIssuer
	superAdmin config.SuperAdminConfig
	audit      AuditRecorder
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, tokens *auth.TokenIssuer, superAdmin config.SuperAdminConfig, audit AuditRecorder) AuthService {
	return &authService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		tokens:     tokens,
		superAdmin: superAdmin,
		audit:      audit,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	if s.isSuperAdminLogin(req) {
		principal := auth.SuperAdminPrincipal()
		pair, err := s.tokens.Issue(principal)
		if err != nil {
			return nil, fmt.Errorf("failed to issue tokens: %w", err)
		}
		s.audit.Record(ctx, principal.UserID, "auth.login", map[string]interface{}{"builtin": true})
		return &LoginResponse{TokenPair: pair, User: superAdminProfile()}, nil
	}

	user, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a bad password; existence must not leak.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		s.logger.Warn("Login rejected", "user_id", user.ID, "reason", "bad password")
		return nil, ErrInvalidCredentials
	}
	if user.IsActive != models.UserActive {
		s.logger.Warn("Login rejected", "user_id", user.ID, "reason", "inactive")
		return nil, ErrUserInactive
	}

	principal := auth.PrincipalFromUser(user)
	pair, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.audit.Record(ctx, user.ID, "auth.login", map[string]interface{}{"uid": user.UID})
	return &LoginResponse{TokenPair: pair, User: profileOf(user)}, nil
}

// Refresh rebuilds the principal from current store state rather than from
// the token's claims: a deactivated user cannot refresh their way back in,
// and a role change is picked up on the next refresh.
func (s *authService) Refresh(ctx context.Context, req *RefreshRequest) (*auth.TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	claims, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	principal, err := s.ResolvePrincipal(ctx, claims)
	if err != nil {
		// A refresh token held by an inactive or deleted principal is just an
		// invalid token; 403 is reserved for the login path.
		if errors.Is(err, ErrUserInactive) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	pair, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &pair, nil
}

func (s *authService) Logout(ctx context.Context, principal auth.Principal) {
	// Tokens are stateless; logout only leaves an audit trail.
	s.audit.Record(ctx, principal.UserID, "auth.logout", nil)
}

func (s *authService) Me(ctx context.Context, principal auth.Principal) (*ProfileResponse, error) {
	if principal.Builtin {
		profile := superAdminProfile()
		return &profile, nil
	}

	user, err := s.repo.User().GetByID(ctx, s.db, principal.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	profile := profileOf(user)
	return &profile, nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, claims *auth.Claims) (auth.Principal, error) {
	if claims.Subject == auth.SuperAdminID {
		return auth.SuperAdminPrincipal(), nil
	}

	user, err := s.repo.User().GetByID(ctx, s.db, claims.Subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return auth.Principal{}, ErrInvalidToken
		}
		return auth.Principal{}, fmt.Errorf("failed to resolve principal: %w", err)
	}
	if user.IsActive != models.UserActive {
		return auth.Principal{}, ErrUserInactive
	}
	return auth.PrincipalFromUser(user), nil
}

func (s *authService) isSuperAdminLogin(req *LoginRequest) bool {
	if s.superAdmin.UID == "" || s.superAdmin.Password == "" {
		return false
	}
	uidMatch := subtle.ConstantTimeCompare([]byte(req.Identifier), []byte(s.superAdmin.UID)) == 1
	pwMatch := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.superAdmin.Password)) == 1
	return uidMatch && pwMatch
}

func (s *authService) findByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, s.db, identifier)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}
	return s.repo.User().GetByUID(ctx, s.db, identifier)
}

func profileOf(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:               u.ID,
		UID:              u.UID,
		Name:             u.Name,
		Email:            u.Email,
		Roles:            u.RoleSet(),
		DefaultDashboard: u.DefaultDashboard,
		IsActive:         u.IsActive,
	}
}

func superAdminProfile() ProfileResponse {
	return ProfileResponse{
		ID:               auth.SuperAdminID,
		UID:              auth.SuperAdminID,
		Name:             "Super Admin",
		Email:            auth.SuperAdminEmail,
		Roles:            []models.Role{models.RoleSuperAdmin},
		DefaultDashboard: models.RoleSuperAdmin,
		IsActive:         models.UserActive,
	}
}

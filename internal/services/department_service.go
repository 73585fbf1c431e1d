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

type departmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewDepartmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) DepartmentService {
	return &departmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

func (s *departmentService) Create(ctx context.Context, req *CreateDepartmentRequest, actor auth.Principal) (*models.Department, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("department.create", "requires ADMIN role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	dept := &models.Department{
		DeptName:  req.DeptName,
		CreatedBy: actor.UserID,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Department().GetByName(ctx, nil, req.DeptName); err == nil {
			return ErrDepartmentExists
		} else if !repositories.IsNotFoundError(err) {
			return err
		}
		if req.DeanID != nil {
			if err := s.checkDeanEligible(ctx, txRepo, *req.DeanID); err != nil {
				return err
			}
			dept.DeanID = req.DeanID
		}
		return txRepo.Department().Create(ctx, nil, dept)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDepartmentExists
		}
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "department.create", map[string]interface{}{"dept_id": dept.ID, "name": dept.DeptName})
	return dept, nil
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*models.Department, error) {
	dept, err := s.repo.Department().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return dept, nil
}

func (s *departmentService) Update(ctx context.Context, id string, req *UpdateDepartmentRequest, actor auth.Principal) (*models.Department, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("department.update", "requires ADMIN role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	dept, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DeptName != nil && *req.DeptName != dept.DeptName {
		if _, err := s.repo.Department().GetByName(ctx, s.db, *req.DeptName); err == nil {
			return nil, ErrDepartmentExists
		} else if !repositories.IsNotFoundError(err) {
			return nil, err
		}
		dept.DeptName = *req.DeptName
	}

	if err := s.repo.Department().Update(ctx, s.db, dept); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDepartmentExists
		}
		return nil, fmt.Errorf("failed to update department: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "department.update", map[string]interface{}{"dept_id": id})
	return dept, nil
}

func (s *departmentService) Delete(ctx context.Context, id string, actor auth.Principal) error {
	if !actor.HasRole(models.RoleAdmin) {
		return NewPermissionError("department.delete", "requires ADMIN role or above")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Department().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "department.delete", map[string]interface{}{"dept_id": id})
	return nil
}

func (s *departmentService) List(ctx context.Context, limit, offset int) (*DepartmentListResponse, error) {
	depts, total, err := s.repo.Department().List(ctx, s.db, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return &DepartmentListResponse{Departments: depts, Total: total}, nil
}

// AssignDean points a department at its dean. The dean must be an ACTIVE
// user holding ADMIN; the check and the assignment run in one transaction.
func (s *departmentService) AssignDean(ctx context.Context, deptID, userID string, actor auth.Principal) (*models.Department, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("department.assign_dean", "requires ADMIN role or above")
	}

	var dept *models.Department
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		dept, err = txRepo.Department().GetByID(ctx, nil, deptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDepartmentNotFound
			}
			return err
		}
		if err := s.checkDeanEligible(ctx, txRepo, userID); err != nil {
			return err
		}
		dept.DeanID = &userID
		return txRepo.Department().Update(ctx, nil, dept)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "department.assign_dean", map[string]interface{}{"dept_id": deptID, "dean_id": userID})
	return dept, nil
}

func (s *departmentService) RemoveDean(ctx context.Context, deptID string, actor auth.Principal) (*models.Department, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("department.remove_dean", "requires ADMIN role or above")
	}

	dept, err := s.GetByID(ctx, deptID)
	if err != nil {
		return nil, err
	}
	dept.DeanID = nil
	if err := s.repo.Department().Update(ctx, s.db, dept); err != nil {
		return nil, fmt.Errorf("failed to remove dean: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "department.remove_dean", map[string]interface{}{"dept_id": deptID})
	return dept, nil
}

func (s *departmentService) checkDeanEligible(ctx context.Context, repo repositories.Repository, userID string) error {
	user, err := repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsActive != models.UserActive {
		return NewPermissionError("department.assign_dean", "dean must be an active user")
	}
	if !models.HasHigherOrEqualRole(user.RoleSet(), models.RoleAdmin) {
		return NewPermissionError("department.assign_dean", "dean must hold the ADMIN role")
	}
	return nil
}

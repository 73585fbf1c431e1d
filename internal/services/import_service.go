package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
)

// importService bulk-creates users from an xlsx sheet. Each row goes through
// the same path as a single user creation, so one bad row never aborts the
// batch.
type importService struct {
	users  UserService
	logger *slog.Logger
	audit  AuditRecorder
}

func NewImportService(users UserService, logger *slog.Logger, audit AuditRecorder) ImportService {
	return &importService{users: users, logger: logger, audit: audit}
}

// Expected sheet columns, in order: uid, name, email, password, roles
// (comma-separated tags), default_dashboard (optional; defaults to the
// highest role). The first row is a header and is skipped.
func (s *importService) ImportUsers(ctx context.Context, r io.Reader, actor auth.Principal) (*ImportUsersResult, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError("user.import", "requires ADMIN role or above")
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewValidationError(fmt.Errorf("not a valid xlsx file: %w", err))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	result := &ImportUsersResult{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1

		req, err := parseUserRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		if _, err := s.users.Create(ctx, req, actor); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		result.Created++
	}

	s.logger.Info("User import finished",
		"actor", actor.UserID,
		"created", result.Created,
		"skipped", result.Skipped)
	s.audit.Record(ctx, actor.UserID, "user.import", map[string]interface{}{
		"created": result.Created,
		"skipped": result.Skipped,
	})
	return result, nil
}

func parseUserRow(row []string) (*CreateUserRequest, error) {
	if len(row) < 5 {
		return nil, fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}

	roles, err := parseRoles(row[4])
	if err != nil {
		return nil, err
	}

	defaultDashboard, err := models.HighestRole(roles)
	if err != nil {
		return nil, err
	}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		tag := models.Role(strings.ToUpper(strings.TrimSpace(row[5])))
		if !tag.Valid() {
			return nil, fmt.Errorf("unknown default dashboard %q", row[5])
		}
		defaultDashboard = tag
	}

	return &CreateUserRequest{
		UID:              strings.TrimSpace(row[0]),
		Name:             strings.TrimSpace(row[1]),
		Email:            strings.TrimSpace(row[2]),
		Password:         row[3],
		Roles:            roles,
		DefaultDashboard: defaultDashboard,
	}, nil
}

func parseRoles(cell string) ([]models.Role, error) {
	parts := strings.Split(cell, ",")
	roles := make([]models.Role, 0, len(parts))
	for _, p := range parts {
		tag := models.Role(strings.ToUpper(strings.TrimSpace(p)))
		if tag == "" {
			continue
		}
		if !tag.Valid() {
			return nil, fmt.Errorf("unknown role %q", p)
		}
		roles = append(roles, tag)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("no roles given")
	}
	return roles, nil
}

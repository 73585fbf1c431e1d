package auth

import "github.com/campushub/lms-service/internal/models"

// Principal is the authenticated identity attached to a request after the
// auth middleware runs. Builtin marks the configured superadmin, which has no
// backing user row and is treated as permanently ACTIVE.
type Principal struct {
	UserID           string        `json:"userId"`
	Email            string        `json:"email"`
	Roles            []models.Role `json:"roles"`
	DefaultDashboard models.Role   `json:"defaultDashboard"`
	Builtin          bool          `json:"-"`
}

// SuperAdminID is the sentinel subject embedded in tokens issued to the
// builtin superadmin.
const SuperAdminID = "superadmin"

// SuperAdminEmail is the synthetic address reported for the builtin
// superadmin profile.
const SuperAdminEmail = "superadmin@university.edu"

// SuperAdminPrincipal builds the synthetic always-active SUPERADMIN
// principal.
func SuperAdminPrincipal() Principal {
	return Principal{
		UserID:           SuperAdminID,
		Email:            SuperAdminEmail,
		Roles:            []models.Role{models.RoleSuperAdmin},
		DefaultDashboard: models.RoleSuperAdmin,
		Builtin:          true,
	}
}

// PrincipalFromUser derives a principal from a freshly loaded user row.
func PrincipalFromUser(u *models.User) Principal {
	return Principal{
		UserID:           u.ID,
		Email:            u.Email,
		Roles:            u.RoleSet(),
		DefaultDashboard: u.DefaultDashboard,
	}
}

// HasRole evaluates the rank-based hierarchy check for this principal.
func (p Principal) HasRole(minimum models.Role) bool {
	return models.HasHigherOrEqualRole(p.Roles, minimum)
}

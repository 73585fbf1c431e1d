package models

import "fmt"

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleCC         Role = "CC"
	RoleHOD        Role = "HOD"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// roleRank is the single ordering table for the role hierarchy. Every
// privilege gate in the service goes through HasHigherOrEqualRole; there is
// deliberately no second allowed-role-list mechanism.
var roleRank = map[Role]int{
	RoleStudent:    1,
	RoleTeacher:    2,
	RoleCC:         3,
	RoleHOD:        4,
	RoleAdmin:      5,
	RoleSuperAdmin: 6,
}

// AllRoles lists the valid role tags in ascending rank order.
var AllRoles = []Role{RoleStudent, RoleTeacher, RoleCC, RoleHOD, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank returns the numeric rank of a role, 0 for unknown tags.
func (r Role) Rank() int {
	return roleRank[r]
}

// HasHigherOrEqualRole reports whether the highest-ranked role in roles
// satisfies the required minimum. Unknown tags rank as 0 and never satisfy
// anything.
func HasHigherOrEqualRole(roles []Role, minimum Role) bool {
	highest := 0
	for _, r := range roles {
		if rank := roleRank[r]; rank > highest {
			highest = rank
		}
	}
	return highest >= roleRank[minimum] && highest > 0
}

// HighestRole returns the single highest-ranked tag in roles. An empty or
// all-invalid role set violates the User invariant and is rejected outright.
func HighestRole(roles []Role) (Role, error) {
	var best Role
	bestRank := 0
	for _, r := range roles {
		if rank := roleRank[r]; rank > bestRank {
			best, bestRank = r, rank
		}
	}
	if bestRank == 0 {
		return "", fmt.Errorf("role set %v contains no valid role", roles)
	}
	return best, nil
}

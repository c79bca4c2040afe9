package session

import "strings"

// Role classifies the signed-in actor for assignment gating.
type Role string

const (
	RoleClinician    Role = "clinician"
	RoleClinicalLead Role = "clinical_lead"
	RoleAdmin        Role = "admin"
	RoleOther        Role = "other"
)

// Actor is the identity decoded from the bearer credential.
// A zero Actor means no usable credential was presented.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Resolved reports whether the credential yielded a usable identity.
func (a Actor) Resolved() bool {
	return strings.TrimSpace(a.ID) != ""
}

// CanClaim reports whether the role may take an unassigned case.
func (a Actor) CanClaim() bool {
	switch a.Role {
	case RoleClinician, RoleClinicalLead, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanOverrideAssignment reports whether the role alone authorizes reassignment.
func (a Actor) CanOverrideAssignment() bool {
	return a.Role == RoleAdmin || a.Role == RoleClinicalLead
}

// ParseRole maps a raw claim value onto a known role, defaulting to other.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "clinician":
		return RoleClinician
	case "clinical_lead", "clinical-lead", "lead":
		return RoleClinicalLead
	case "admin", "administrator":
		return RoleAdmin
	default:
		return RoleOther
	}
}

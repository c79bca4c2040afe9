package domain

import "github.com/rkimidis/acucare-pathways-sub001/internal/session"

// Action is one of the three assignment transitions.
type Action string

const (
	ActionClaim    Action = "claim"
	ActionUnassign Action = "unassign"
	ActionReassign Action = "reassign"
)

// GateInput is everything the authorization gate may consider.
type GateInput struct {
	Actor  session.Actor
	IsDuty bool
}

// Allowed decides whether an assignment action should be offered for a case.
//
// This gate is advisory: the clinical API independently rejects disallowed
// transitions, so a wrong allow here costs a failed action, never an
// unauthorized one. Unresolved actors are denied everything.
func Allowed(in GateInput, action Action, c TriageCaseSummary) bool {
	if !in.Actor.Resolved() {
		return false
	}

	switch action {
	case ActionClaim:
		return !c.Assigned() && in.Actor.CanClaim()
	case ActionUnassign:
		return c.AssignedTo(in.Actor.ID)
	case ActionReassign:
		if !c.Assigned() {
			return false
		}
		return in.IsDuty || in.Actor.CanOverrideAssignment()
	default:
		return false
	}
}

package authorization

import (
	"context"
	"errors"
)

const (
	ObjectTriageQueue = "triage_queue"
	ObjectTriageCase  = "triage_case"
	ObjectAuditLog    = "audit_log"
	ObjectDutyRoster  = "duty_roster"
)

const (
	ActionQueueView      = "triage_queue.view"
	ActionCaseClaim      = "triage_case.claim"
	ActionCaseUnassign   = "triage_case.unassign"
	ActionCaseReassign   = "triage_case.reassign"
	ActionAuditLogView   = "audit_log.view"
	ActionDutyRosterView = "duty_roster.view"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

// Service answers route-level permission checks. This is the console's own
// coarse enforcement for its HTTP surface; per-case assignment gating stays
// in the triage domain and the clinical API remains the final authority.
type Service interface {
	Authorize(ctx context.Context, actorID, role, object, action string) error
}

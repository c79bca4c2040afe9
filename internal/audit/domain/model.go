package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OperatorAction is one audited console action. Only operator activity is
// recorded here; case data itself stays with the clinical API.
type OperatorAction struct {
	ID         snowflake.ID      `json:"id"`
	ActorID    string            `json:"actor_id"`
	ActorRole  string            `json:"actor_role"`
	Action     string            `json:"action"`
	CaseID     string            `json:"case_id,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Outcome    string            `json:"outcome"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

func (OperatorAction) TableName() string {
	return "operator_actions"
}

const (
	ActionClaim              = "case.claim"
	ActionUnassign           = "case.unassign"
	ActionReassign           = "case.reassign"
	ActionSessionInvalidated = "session.invalidated"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

package domain

import (
	"context"
	"net/url"
	"time"

	"github.com/rkimidis/acucare-pathways-sub001/internal/session"
)

// Service drives the staff queue view for one signed-in actor.
type Service interface {
	// View returns the current queue snapshot, establishing the default
	// filter on first use and honoring any filter carried in query.
	View(ctx context.Context, actor session.Actor, credential string, query url.Values) (*QueueView, error)

	// SetFilter replaces the filter and refetches immediately.
	SetFilter(ctx context.Context, actor session.Actor, credential string, filter QueueFilter) (*QueueView, error)

	// Refresh refetches with the filter currently in effect.
	Refresh(ctx context.Context, actor session.Actor, credential string) (*QueueView, error)

	Claim(ctx context.Context, actor session.Actor, credential string, caseID string) error
	Unassign(ctx context.Context, actor session.Actor, credential string, caseID string) error
	Reassign(ctx context.Context, actor session.Actor, credential string, req ReassignRequest) error
}

// ReassignRequest carries the two mandatory operator inputs.
type ReassignRequest struct {
	CaseID   string `json:"-"`
	TargetID string `json:"user_id" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// AnnotatedCase pairs a queue row with its derived display classification.
type AnnotatedCase struct {
	TriageCaseSummary
	Annotations CaseAnnotations `json:"annotations"`
}

// QueueView is the full snapshot handed to the presentation layer. It is
// always replaced wholesale, never patched row by row.
type QueueView struct {
	Items       []AnnotatedCase      `json:"items"`
	Counts      QueueAggregateCounts `json:"counts"`
	Filter      QueueFilter          `json:"-"`
	Roster      *DutyRosterWindow    `json:"duty_roster,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Stale       bool                 `json:"stale"`
	FetchError  string               `json:"fetch_error,omitempty"`
}

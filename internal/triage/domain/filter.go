package domain

import (
	"net/url"
	"strings"
)

// TierFilter narrows the queue to one urgency band.
type TierFilter string

const (
	TierFilterAll   TierFilter = "all"
	TierFilterRed   TierFilter = "red"
	TierFilterAmber TierFilter = "amber"
	TierFilterGreen TierFilter = "green"
	TierFilterBlue  TierFilter = "blue"
)

// AssignmentFilter narrows the queue by assignee.
type AssignmentFilter string

const (
	AssignmentAny        AssignmentFilter = "any"
	AssignmentUnassigned AssignmentFilter = "unassigned"
	AssignmentMe         AssignmentFilter = "me"
	AssignmentOthers     AssignmentFilter = "others"
)

// QueueFilter is the ephemeral view filter. It lives only for the duration
// of a console session and is mirrored to query parameters so a filtered
// view stays linkable.
type QueueFilter struct {
	Tier       TierFilter
	Assignment AssignmentFilter
	CaseStatus *string
}

// ParseTierFilter maps a raw query value onto a tier filter. Unrecognized
// values fall back to all.
func ParseTierFilter(raw string) (TierFilter, bool) {
	switch TierFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case TierFilterRed:
		return TierFilterRed, true
	case TierFilterAmber:
		return TierFilterAmber, true
	case TierFilterGreen:
		return TierFilterGreen, true
	case TierFilterBlue:
		return TierFilterBlue, true
	case TierFilterAll:
		return TierFilterAll, true
	default:
		return TierFilterAll, false
	}
}

// ParseAssignmentFilter maps a raw query value onto an assignment filter.
func ParseAssignmentFilter(raw string) (AssignmentFilter, bool) {
	switch AssignmentFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case AssignmentUnassigned:
		return AssignmentUnassigned, true
	case AssignmentMe:
		return AssignmentMe, true
	case AssignmentOthers:
		return AssignmentOthers, true
	case AssignmentAny:
		return AssignmentAny, true
	default:
		return AssignmentAny, false
	}
}

// FilterFromQuery reconstructs a filter from navigational query parameters.
// The boolean reports whether any recognized filter parameter was present;
// callers use it to decide whether the defaulting rule should run instead.
func FilterFromQuery(values url.Values) (QueueFilter, bool) {
	filter := QueueFilter{Tier: TierFilterAll, Assignment: AssignmentAny}
	present := false

	if raw := values.Get("tier"); raw != "" {
		tier, ok := ParseTierFilter(raw)
		filter.Tier = tier
		present = present || ok
	}
	if raw := values.Get("assigned"); raw != "" {
		assignment, ok := ParseAssignmentFilter(raw)
		filter.Assignment = assignment
		present = present || ok
	}
	if raw := strings.TrimSpace(values.Get("case_status")); raw != "" {
		filter.CaseStatus = &raw
		present = true
	}

	return filter, present
}

// Query serializes the filter into the remote queue endpoint's parameters.
func (f QueueFilter) Query() url.Values {
	values := url.Values{}
	if f.Tier != "" && f.Tier != TierFilterAll {
		values.Set("tier", string(f.Tier))
	}
	if f.Assignment != "" && f.Assignment != AssignmentAny {
		values.Set("assigned", string(f.Assignment))
	}
	if f.CaseStatus != nil && strings.TrimSpace(*f.CaseStatus) != "" {
		values.Set("case_status", strings.TrimSpace(*f.CaseStatus))
	}
	return values
}

// Normalize fills zero values so a filter is always fully resolved before
// it reaches the fetcher.
func (f QueueFilter) Normalize() QueueFilter {
	if f.Tier == "" {
		f.Tier = TierFilterAll
	}
	if f.Assignment == "" {
		f.Assignment = AssignmentAny
	}
	return f
}

// DefaultFilter computes the initial filter for an actor. Duty clinicians
// triage the backlog first, everyone else sees their own work.
func DefaultFilter(actorID string, roster *DutyRosterWindow) QueueFilter {
	assignment := AssignmentMe
	if roster != nil && roster.Includes(actorID) {
		assignment = AssignmentUnassigned
	}
	return QueueFilter{Tier: TierFilterAll, Assignment: assignment}
}

package domain

import "time"

// Tier is the clinical urgency band assigned by the triage ruleset.
// An empty tier means the case has not been triaged yet.
type Tier string

const (
	TierRed   Tier = "red"
	TierAmber Tier = "amber"
	TierGreen Tier = "green"
	TierBlue  Tier = "blue"
)

// TriageCaseSummary is one queue row. The remote clinical API owns every
// field; the console only annotates and orders them.
type TriageCaseSummary struct {
	ID               string `json:"id"`
	PatientReference string `json:"patient_reference"`

	Tier    *Tier   `json:"tier"`
	Pathway *string `json:"pathway"`

	Status         *string  `json:"status"`
	RulesFired     []string `json:"rules_fired"`
	RulesetVersion *string  `json:"ruleset_version"`

	CreatedAt           time.Time  `json:"created_at"`
	TriagedAt           *time.Time `json:"triaged_at"`
	SLADeadline         *time.Time `json:"sla_deadline"`
	SLAMinutesRemaining *int       `json:"sla_minutes_remaining"`
	SLABreached         bool       `json:"sla_breached"`
	AgeMinutes          *int       `json:"age_minutes"`
	LastStaffActionAt   *time.Time `json:"last_staff_action_at"`

	AssignedToUserID       *string    `json:"assigned_to_user_id"`
	AssignedToUserInitials string     `json:"assigned_to_user_initials"`
	AssignedToUserName     string     `json:"assigned_to_user_name"`
	AssignedToMe           bool       `json:"assigned_to_me"`
	AssignedAt             *time.Time `json:"assigned_at"`

	ClinicianReviewRequired bool `json:"clinician_review_required"`
}

// Assigned reports whether the case currently has an assignee.
func (c TriageCaseSummary) Assigned() bool {
	return c.AssignedToUserID != nil && *c.AssignedToUserID != ""
}

// AssignedTo reports whether the case is assigned to the given user.
func (c TriageCaseSummary) AssignedTo(userID string) bool {
	return c.Assigned() && *c.AssignedToUserID == userID
}

// QueueAggregateCounts mirrors the remote service's per-tier counts over the
// same population the filtered list is drawn from.
type QueueAggregateCounts struct {
	Total         int `json:"total"`
	RedCount      int `json:"red_count"`
	AmberCount    int `json:"amber_count"`
	GreenCount    int `json:"green_count"`
	BlueCount     int `json:"blue_count"`
	BreachedCount int `json:"breached_count"`
}

// RosterMember is an actor reference inside a duty roster window.
type RosterMember struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Title       string `json:"title"`
	Role        string `json:"role"`
}

// DutyRosterWindow is the currently published duty window. Primary and
// backup are both nullable when no roster covers "now".
type DutyRosterWindow struct {
	StartsAt time.Time     `json:"starts_at"`
	EndsAt   time.Time     `json:"ends_at"`
	Primary  *RosterMember `json:"primary"`
	Backup   *RosterMember `json:"backup"`
}

// Includes reports whether the given actor is the window's primary or backup.
func (w DutyRosterWindow) Includes(actorID string) bool {
	if actorID == "" {
		return false
	}
	if w.Primary != nil && w.Primary.ID == actorID {
		return true
	}
	return w.Backup != nil && w.Backup.ID == actorID
}

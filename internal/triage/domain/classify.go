package domain

import "fmt"

// SLASeverity classifies how close a case is to breaching its SLA.
type SLASeverity string

const (
	SLABreached SLASeverity = "breached"
	SLAWarning  SLASeverity = "warning"
	SLANormal   SLASeverity = "normal"
)

// AgeSeverity classifies how long a case has been waiting.
type AgeSeverity string

const (
	AgeNeutral AgeSeverity = "neutral"
	AgeAmber   AgeSeverity = "amber"
	AgeRed     AgeSeverity = "red"
)

const (
	slaWarningMinutes = 30
	ageAmberMinutes   = 24 * 60
	ageRedMinutes     = 72 * 60
)

// ClassifySLA evaluates the SLA band from already-fetched fields. A nil
// remaining with breached=false means the SLA clock has not started.
// Negative remaining counts as breached in the staff queue.
func ClassifySLA(breached bool, minutesRemaining *int) SLASeverity {
	if breached {
		return SLABreached
	}
	if minutesRemaining == nil {
		return SLANormal
	}
	if *minutesRemaining < 0 {
		return SLABreached
	}
	if *minutesRemaining <= slaWarningMinutes {
		return SLAWarning
	}
	return SLANormal
}

// ClassifyAge buckets waiting time at 24h and 72h. Nil age is neutral.
func ClassifyAge(ageMinutes *int) AgeSeverity {
	if ageMinutes == nil {
		return AgeNeutral
	}
	switch {
	case *ageMinutes > ageRedMinutes:
		return AgeRed
	case *ageMinutes > ageAmberMinutes:
		return AgeAmber
	default:
		return AgeNeutral
	}
}

// FormatDuration renders minutes as "{h}h {m}m", or "{m}m" under an hour.
// Nil renders the fixed placeholder. Negative values clamp to "0m".
func FormatDuration(minutes *int) string {
	if minutes == nil {
		return "--"
	}
	m := *minutes
	if m < 0 {
		m = 0
	}
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

// CaseAnnotations carries the derived display classification for one row.
type CaseAnnotations struct {
	SLASeverity SLASeverity `json:"sla_severity"`
	AgeSeverity AgeSeverity `json:"age_severity"`
	AgeDisplay  string      `json:"age_display"`
	SLADisplay  string      `json:"sla_display"`
	CanClaim    bool        `json:"can_claim"`
	CanUnassign bool        `json:"can_unassign"`
	CanReassign bool        `json:"can_reassign"`
}

// Annotate derives the classification and offered actions for one case.
func Annotate(c TriageCaseSummary, decision GateInput) CaseAnnotations {
	return CaseAnnotations{
		SLASeverity: ClassifySLA(c.SLABreached, c.SLAMinutesRemaining),
		AgeSeverity: ClassifyAge(c.AgeMinutes),
		AgeDisplay:  FormatDuration(c.AgeMinutes),
		SLADisplay:  FormatDuration(c.SLAMinutesRemaining),
		CanClaim:    Allowed(decision, ActionClaim, c),
		CanUnassign: Allowed(decision, ActionUnassign, c),
		CanReassign: Allowed(decision, ActionReassign, c),
	}
}

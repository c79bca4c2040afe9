package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySLA(t *testing.T) {
	t.Run("breached flag wins regardless of remaining", func(t *testing.T) {
		assert.Equal(t, SLABreached, ClassifySLA(true, nil))
		assert.Equal(t, SLABreached, ClassifySLA(true, intPtr(500)))
		assert.Equal(t, SLABreached, ClassifySLA(true, intPtr(-5)))
	})

	t.Run("negative remaining counts as breached", func(t *testing.T) {
		assert.Equal(t, SLABreached, ClassifySLA(false, intPtr(-1)))
	})

	t.Run("warning at or under thirty minutes", func(t *testing.T) {
		assert.Equal(t, SLAWarning, ClassifySLA(false, intPtr(0)))
		assert.Equal(t, SLAWarning, ClassifySLA(false, intPtr(30)))
	})

	t.Run("normal above thirty minutes", func(t *testing.T) {
		assert.Equal(t, SLANormal, ClassifySLA(false, intPtr(31)))
		assert.Equal(t, SLANormal, ClassifySLA(false, intPtr(500)))
	})

	t.Run("nil remaining means clock not started", func(t *testing.T) {
		assert.Equal(t, SLANormal, ClassifySLA(false, nil))
	})
}

func TestClassifyAge(t *testing.T) {
	assert.Equal(t, AgeNeutral, ClassifyAge(nil))
	assert.Equal(t, AgeNeutral, ClassifyAge(intPtr(0)))
	assert.Equal(t, AgeNeutral, ClassifyAge(intPtr(1440)))
	assert.Equal(t, AgeAmber, ClassifyAge(intPtr(1441)))
	assert.Equal(t, AgeAmber, ClassifyAge(intPtr(4320)))
	assert.Equal(t, AgeRed, ClassifyAge(intPtr(4321)))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "--", FormatDuration(nil))
	assert.Equal(t, "0m", FormatDuration(intPtr(0)))
	assert.Equal(t, "0m", FormatDuration(intPtr(-45)))
	assert.Equal(t, "59m", FormatDuration(intPtr(59)))
	assert.Equal(t, "1h 0m", FormatDuration(intPtr(60)))
	assert.Equal(t, "33h 20m", FormatDuration(intPtr(2000)))
}

func TestAnnotateEndToEnd(t *testing.T) {
	amber := TriageCaseSummary{
		ID:                  "case-amber",
		Tier:                tierPtr(TierAmber),
		AgeMinutes:          intPtr(2000),
		SLABreached:         false,
		SLAMinutesRemaining: intPtr(10),
	}
	red := TriageCaseSummary{
		ID:                  "case-red",
		Tier:                tierPtr(TierRed),
		AgeMinutes:          intPtr(5),
		SLABreached:         false,
		SLAMinutesRemaining: intPtr(500),
	}

	cases := []TriageCaseSummary{amber, red}
	SortByPriority(cases)
	assert.Equal(t, []string{"case-red", "case-amber"}, ids(cases))

	gate := GateInput{}
	amberAnn := Annotate(amber, gate)
	assert.Equal(t, SLAWarning, amberAnn.SLASeverity)
	assert.Equal(t, AgeAmber, amberAnn.AgeSeverity)

	redAnn := Annotate(red, gate)
	assert.Equal(t, SLANormal, redAnn.SLASeverity)
	assert.Equal(t, AgeNeutral, redAnn.AgeSeverity)
}

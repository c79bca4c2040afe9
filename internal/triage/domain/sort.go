package domain

import "sort"

// tierRank orders urgency bands for display. Untriaged cases sit with green
// so they neither jump the queue nor fall behind routine work.
func tierRank(tier *Tier) int {
	if tier == nil {
		return 2
	}
	switch *tier {
	case TierRed:
		return 0
	case TierAmber:
		return 1
	case TierGreen:
		return 2
	case TierBlue:
		return 3
	default:
		return 2
	}
}

func ageOrZero(age *int) int {
	if age == nil {
		return 0
	}
	return *age
}

// SortByPriority orders cases in place: tier rank ascending, then age
// descending so the longest-waiting case in a band surfaces first. The sort
// is stable, so equal (tier, age) pairs keep the server-provided order.
func SortByPriority(cases []TriageCaseSummary) {
	sort.SliceStable(cases, func(i, j int) bool {
		ri, rj := tierRank(cases[i].Tier), tierRank(cases[j].Tier)
		if ri != rj {
			return ri < rj
		}
		return ageOrZero(cases[i].AgeMinutes) > ageOrZero(cases[j].AgeMinutes)
	})
}

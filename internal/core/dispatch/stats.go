package dispatch

import "github.com/example/dealerops/internal/models"

// Stats are the dashboard card counts.
type Stats struct {
	Total            int
	StatusOK         int
	Invalid          int
	FlaggedStock     int
	DispatchEligible int
	OnHold           int
}

// ComputeStats classifies the raw collections and tallies them.
func ComputeStats(records []models.DispatchRecord, h models.ReallocationHistory) Stats {
	stats := Stats{Total: len(records)}
	for _, e := range Classify(records, h) {
		if e.StatusCheck == models.StatusOK {
			stats.StatusOK++
		} else {
			stats.Invalid++
		}
		if e.FlaggedStock {
			stats.FlaggedStock++
		}
		if e.DispatchEligible {
			stats.DispatchEligible++
		}
		if e.OnHold {
			stats.OnHold++
		}
	}
	return stats
}

// DaysBand buckets the days-in-transit counter for display.
func DaysBand(days int) string {
	switch {
	case days <= 7:
		return "green"
	case days <= 14:
		return "yellow"
	case days <= 30:
		return "orange"
	default:
		return "red"
	}
}

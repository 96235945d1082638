// Package reallocation contains the pure logic over reallocation history:
// picking the latest entry per chassis and resolving the current target dealer.
package reallocation

import (
	"time"

	"github.com/example/dealerops/internal/core/dates"
	"github.com/example/dealerops/internal/models"
)

// Instant returns the comparable instant of an entry.
// The Date field wins when it parses; SubmitTime is the fallback.
func Instant(e models.ReallocationEntry) time.Time {
	if t := dates.Parse(e.Date); dates.Valid(t) {
		return t
	}
	return dates.Parse(e.SubmitTime)
}

// Latest returns the entry with the strictly greatest instant.
// Ties keep the earliest entry in slice order. ok is false for an empty history.
func Latest(entries []models.ReallocationEntry) (latest models.ReallocationEntry, ok bool) {
	if len(entries) == 0 {
		return models.ReallocationEntry{}, false
	}

	latest = entries[0]
	latestAt := Instant(latest)
	for _, e := range entries[1:] {
		if at := Instant(e); at.After(latestAt) {
			latest, latestAt = e, at
		}
	}
	return latest, true
}

// DealerOf returns the dealer an entry points at.
// Priority: ReallocatedTo, then Dealer, then Customer.
func DealerOf(e models.ReallocationEntry) string {
	switch {
	case e.ReallocatedTo != "":
		return e.ReallocatedTo
	case e.Dealer != "":
		return e.Dealer
	default:
		return e.Customer
	}
}

// LatestDealer returns DealerOf the latest entry, or "" for an empty history.
func LatestDealer(entries []models.ReallocationEntry) string {
	latest, ok := Latest(entries)
	if !ok {
		return ""
	}
	return DealerOf(latest)
}

// ResolveTargets maps each chassis to the ReallocatedTo of its latest entry.
// Chassis with no entries are absent from the result.
func ResolveTargets(h models.ReallocationHistory) map[string]string {
	targets := make(map[string]string, len(h))
	for chassisNo, entries := range h {
		latest, ok := Latest(entries)
		if !ok {
			continue
		}
		targets[chassisNo] = latest.ReallocatedTo
	}
	return targets
}

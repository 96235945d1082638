// Package dispatch contains the pure classification, statistics and view logic
// over dispatch records. Nothing here performs I/O or returns errors: malformed
// input degrades to empty values.
package dispatch

import (
	"strings"

	"github.com/example/dealerops/internal/core/reallocation"
	"github.com/example/dealerops/internal/models"
)

// FlaggedStockDealer is the sentinel dealer for vehicles parked in holding stock.
const FlaggedStockDealer = "Snowy Stock"

// Entry is a dispatch record tagged with its derived fields.
// The embedded record's DealerCheck holds the recomputed classification.
type Entry struct {
	models.DispatchRecord
	ReallocatedTo    string
	FlaggedStock     bool
	DispatchEligible bool
}

// ValidateDealerCheck compares source, scheduled and reallocation-target dealers.
// Rules, in order:
//  1. all three present and equal -> OK
//  2. source and scheduled present and equal, no target -> OK
//  3. otherwise -> Mismatch
//
// A target that disagrees with a consistent source/scheduled pair is a mismatch.
func ValidateDealerCheck(source, scheduled, target string) string {
	if source != "" && scheduled != "" && target != "" &&
		source == scheduled && scheduled == target {
		return models.StatusOK
	}
	if source != "" && scheduled != "" && source == scheduled && target == "" {
		return models.StatusOK
	}
	return models.StatusMismatch
}

// IsFlaggedStock reports whether a classified record belongs to the holding-stock category,
// either by reallocation or by original scheduling.
func IsFlaggedStock(scheduledDealer, statusCheck, dealerCheck, target string) bool {
	if target == FlaggedStockDealer {
		return true
	}
	return scheduledDealer == FlaggedStockDealer &&
		statusCheck == models.StatusOK &&
		dealerCheck == models.StatusOK &&
		strings.TrimSpace(target) == ""
}

// ClassifyOne tags a single record given its resolved reallocation target.
func ClassifyOne(r models.DispatchRecord, target string) Entry {
	r.DealerCheck = ValidateDealerCheck(r.SAPData, r.ScheduledDealer, target)
	flagged := IsFlaggedStock(r.ScheduledDealer, r.StatusCheck, r.DealerCheck, target)
	return Entry{
		DispatchRecord:   r,
		ReallocatedTo:    target,
		FlaggedStock:     flagged,
		DispatchEligible: r.StatusCheck == models.StatusOK && !flagged,
	}
}

// Classify tags every record, preserving input order.
func Classify(records []models.DispatchRecord, h models.ReallocationHistory) []Entry {
	targets := reallocation.ResolveTargets(h)
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = ClassifyOne(r, targets[r.ChassisNo])
	}
	return entries
}

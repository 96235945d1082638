// Package stocksheet joins the manually kept stock sheet against the production
// schedule and reallocation history.
package stocksheet

import (
	"slices"
	"strings"

	"github.com/example/dealerops/internal/core/dispatch"
	"github.com/example/dealerops/internal/core/reallocation"
	"github.com/example/dealerops/internal/models"
)

// Row is a stock-sheet note with its resolved display fields.
type Row struct {
	ID                string
	ChassisNo         string
	Update            string
	YearNotes         string
	Dispatched        bool
	Model             string
	ScheduledDealer   string
	ReallocatedDealer string
	Customer          string
}

func scheduleKey(chassisNo string) string {
	return strings.ToLower(strings.TrimSpace(chassisNo))
}

// ScheduleIndex maps a normalised chassis to its first schedule entry.
// Duplicate upstream entries after the first are ignored.
func ScheduleIndex(schedule []models.ScheduleEntry) map[string]models.ScheduleEntry {
	index := make(map[string]models.ScheduleEntry, len(schedule))
	for _, s := range schedule {
		key := scheduleKey(s.ChassisNo)
		if key == "" {
			continue
		}
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = s
	}
	return index
}

// Join resolves every note and orders rows by chassis, case-insensitively.
func Join(notes []models.StockSheetNote, schedule []models.ScheduleEntry, h models.ReallocationHistory) []Row {
	index := ScheduleIndex(schedule)

	rows := make([]Row, 0, len(notes))
	for _, n := range notes {
		chassisNo := n.Chassis()
		s := index[scheduleKey(chassisNo)]
		rows = append(rows, Row{
			ID:                n.Key,
			ChassisNo:         chassisNo,
			Update:            n.Update,
			YearNotes:         n.YearNotes,
			Dispatched:        n.Dispatched,
			Model:             s.Model,
			ScheduledDealer:   s.Dealer,
			Customer:          s.Customer,
			ReallocatedDealer: reallocation.LatestDealer(h.Entries(chassisNo)),
		})
	}

	col := dispatch.NewCollator()
	slices.SortStableFunc(rows, func(a, b Row) int {
		return col.CompareString(a.ChassisNo, b.ChassisNo)
	})
	return rows
}

// Visible drops dispatched rows when hideDispatched is set.
func Visible(rows []Row, hideDispatched bool) []Row {
	if !hideDispatched {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Dispatched {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns how many rows are dispatched and the total.
func Counts(rows []Row) (dispatched, total int) {
	for _, r := range rows {
		if r.Dispatched {
			dispatched++
		}
	}
	return dispatched, len(rows)
}

package reallocation

import (
	"sort"

	"github.com/example/dealerops/internal/models"
)

// ProductionUnknown is shown when a chassis has no schedule entry.
const ProductionUnknown = "N/A"

// Processed is the latest reallocation of one chassis still in production.
type Processed struct {
	models.ReallocationEntry
	ChassisNo string
}

// StageLookup maps chassis to production stage. Later schedule entries overwrite earlier ones.
func StageLookup(schedule []models.ScheduleEntry) map[string]string {
	stages := make(map[string]string, len(schedule))
	for _, s := range schedule {
		if s.ChassisNo == "" {
			continue
		}
		stages[s.ChassisNo] = s.RegentProduction
	}
	return stages
}

// Process returns the latest entry of every chassis, ordered by chassis number.
// Chassis whose production stage is Finished are excluded.
func Process(h models.ReallocationHistory, schedule []models.ScheduleEntry) []Processed {
	stages := StageLookup(schedule)

	chassis := make([]string, 0, len(h))
	for chassisNo := range h {
		chassis = append(chassis, chassisNo)
	}
	sort.Strings(chassis)

	var processed []Processed
	for _, chassisNo := range chassis {
		latest, ok := Latest(h[chassisNo])
		if !ok {
			continue
		}

		stage, known := stages[chassisNo]
		if stage == models.ProductionFinished {
			continue
		}
		if !known || stage == "" {
			stage = ProductionUnknown
		}

		latest.RegentProduction = stage
		processed = append(processed, Processed{
			ReallocationEntry: latest,
			ChassisNo:         chassisNo,
		})
	}
	return processed
}

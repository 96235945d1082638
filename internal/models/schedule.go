package models

// ProductionFinished marks a chassis whose production is complete.
const ProductionFinished = "Finished"

// ScheduleEntry is production-pipeline metadata for one chassis.
type ScheduleEntry struct {
	ChassisNo        string
	RegentProduction string
	Model            string
	Dealer           string
	Customer         string
}

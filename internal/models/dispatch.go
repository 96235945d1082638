// Package models holds the plain record types shared by the core, the ports and the adapters.
package models

// Source-status and dealer-check values.
const (
	StatusOK       = "OK"
	StatusMismatch = "Mismatch"
)

// DispatchRecord is one vehicle awaiting dispatch, keyed by chassis number.
// DealerCheck is derived and is recomputed on every classification pass.
type DispatchRecord struct {
	ChassisNo       string
	MatchedPONo     string
	GRToGIDays      int // days in transit, 0 when absent
	DaysFromGR      int
	GRDate          string
	PGIDate         string
	Customer        string
	Model           string
	SAPData         string // source-system dealer
	ScheduledDealer string
	Code            string
	StatusCheck     string
	DealerCheck     string

	OnHold   bool
	OnHoldAt string // RFC3339
	OnHoldBy string

	Comment           string
	EstimatedPickupAt string // RFC3339, empty when not scheduled
}

// DispatchError is an append-only mismatch report row.
type DispatchError struct {
	ID           string
	ChassisNo    string
	ErrorDetails string
	Timestamp    string
	Status       string
}

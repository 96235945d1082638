// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces the CLI and other drivers call into.
package primary

import "context"

// DashboardService defines the primary port for the dispatch dashboard session.
// A session owns its snapshots and optimistic overlay; it is not shared.
type DashboardService interface {
	// Load fetches dispatch, reallocation and schedule. Total failure leaves the session unloaded.
	Load(ctx context.Context) error

	// Subscribe starts live updates. onChange runs after each snapshot has been applied.
	Subscribe(ctx context.Context, onChange func()) error

	// View classifies, filters, searches and sorts the dispatch table.
	View(req ViewRequest) (*DashboardView, error)

	// Stats returns the dashboard cards over the unfiltered dispatch table.
	Stats() (*DashboardStats, error)

	// Reallocations lists the latest reallocation per chassis, excluding finished production.
	Reallocations(req ReallocationQuery) ([]*ReallocationRow, error)

	// ToggleHold flips the hold flag of a chassis.
	ToggleHold(ctx context.Context, chassisNo string) error

	// SaveComment writes the operator comment of a chassis.
	SaveComment(ctx context.Context, chassisNo, comment string) error

	// SavePickup schedules the estimated pickup of a chassis. An empty value clears it.
	SavePickup(ctx context.Context, chassisNo, pickupAt string) error

	// ReportMismatch emails a dealer-check report and records it in the error log.
	ReportMismatch(ctx context.Context, chassisNo string) (*ReportResult, error)

	// RowState returns the pending/saving/error state of a chassis.
	RowState(chassisNo string) RowState

	// Export writes the filtered view as Active and On Hold tables.
	Export(ctx context.Context, req ExportRequest) ([]string, error)

	// Close tears down live subscriptions. Late callbacks become no-ops.
	Close() error
}

// ViewRequest contains parameters for building the dispatch table.
type ViewRequest struct {
	Category   string // all, ok, invalid, onHold, snowy, canBeDispatched
	Search     string
	SortColumn string // empty keeps store order
	Descending bool
}

// DispatchRow represents a classified dispatch record at the port boundary.
type DispatchRow struct {
	ChassisNo         string
	GRToGIDays        int
	DaysBand          string // green, yellow, orange, red
	Customer          string
	Model             string
	SAPData           string
	ScheduledDealer   string
	MatchedPONo       string
	Code              string
	StatusCheck       string
	DealerCheck       string
	ReallocatedTo     string
	FlaggedStock      bool
	DispatchEligible  bool
	OnHold            bool
	OnHoldAt          string
	OnHoldBy          string
	Comment           string
	EstimatedPickupAt string
	State             RowState
}

// DashboardView is the display-ready dispatch table.
type DashboardView struct {
	Rows   []*DispatchRow
	Active []*DispatchRow
	OnHold []*DispatchRow
}

// DashboardStats holds the dashboard card counts.
type DashboardStats struct {
	Total            int
	StatusOK         int
	Invalid          int
	FlaggedStock     int
	DispatchEligible int
	OnHold           int
}

// RowState is the optimistic-write state of one chassis.
type RowState struct {
	PendingFields []string
	Saving        bool
	Error         string
}

// ReallocationQuery contains parameters for the reallocation table.
type ReallocationQuery struct {
	Search     string
	SortColumn string // chassis, customer, model, originalDealer, reallocatedTo, regentProduction, issue, submitTime
	Descending bool
}

// ReallocationRow represents the latest reallocation of a chassis.
type ReallocationRow struct {
	ChassisNo           string
	EntryID             string
	Customer            string
	Model               string
	OriginalDealer      string
	ReallocatedTo       string
	RegentProduction    string
	IssueType           string
	SignedPlansReceived string
	SubmitTime          string
	Date                string
}

// ReportResult contains the outcome of a mismatch report.
type ReportResult struct {
	ChassisNo string
	EmailSent bool
	ErrorID   string // key of the appended dispatchError record
}

// ExportRequest contains parameters for exporting the dispatch table.
type ExportRequest struct {
	View   ViewRequest
	Format string // xlsx or csv
	Base   string // file name stem
}

package primary

import "context"

// StockSheetService defines the primary port for the stock sheet.
type StockSheetService interface {
	// Load fetches notes, schedule and reallocation history.
	Load(ctx context.Context) error

	// Subscribe starts live updates of the stock sheet.
	Subscribe(ctx context.Context, onChange func()) error

	// Rows returns the joined sheet, optionally hiding dispatched rows.
	Rows(hideDispatched bool) (*StockSheetView, error)

	// AddChassis adds a row keyed by the sanitised chassis.
	AddChassis(ctx context.Context, chassisNo string) error

	// EditUpdate drafts the update text of a row and schedules an autosave.
	EditUpdate(ctx context.Context, rowID, text string) error

	// EditYearNotes drafts the year notes of a row and schedules an autosave.
	EditYearNotes(ctx context.Context, rowID, text string) error

	// Save writes a row's drafts immediately, cancelling any scheduled autosave.
	Save(ctx context.Context, rowID string) error

	// ToggleDispatched flips the dispatched flag of a row.
	ToggleDispatched(ctx context.Context, rowID string) error

	// Delete removes a row and cancels its autosave.
	Delete(ctx context.Context, rowID string) error

	// Close stops autosave timers and live updates.
	Close() error
}

// StockSheetRow represents a joined stock-sheet row. Update and YearNotes show drafts when present.
type StockSheetRow struct {
	ID                string
	ChassisNo         string
	Update            string
	YearNotes         string
	Dispatched        bool
	Model             string
	ScheduledDealer   string
	ReallocatedDealer string
	Customer          string
	Dirty             bool // unsaved draft
}

// StockSheetView is the visible sheet with its counts over all rows.
type StockSheetView struct {
	Rows       []*StockSheetRow
	Dispatched int
	Total      int
}

package models

// StockSheetNote is a manually curated stock-sheet row.
// Key is the store key; ChassisNo falls back to Key when empty.
type StockSheetNote struct {
	Key        string
	ChassisNo  string
	Update     string
	YearNotes  string
	Dispatched bool
	CreatedAt  string
	UpdatedAt  string
}

// Chassis returns the chassis number for the note.
func (n StockSheetNote) Chassis() string {
	if n.ChassisNo != "" {
		return n.ChassisNo
	}
	return n.Key
}

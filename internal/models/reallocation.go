package models

// ReallocationEntry is one event in a chassis's reallocation history.
// Either Date (day/month/year) or SubmitTime (ISO) may be set.
type ReallocationEntry struct {
	EntryID             string
	Customer            string
	Model               string
	OriginalDealer      string
	ReallocatedTo       string
	Dealer              string
	RegentProduction    string
	SubmitTime          string
	Date                string
	SignedPlansReceived string
	IssueType           string
}

// ReallocationHistory maps chassis number to its entries in store order.
// Entry ids are unique within one chassis.
type ReallocationHistory map[string][]ReallocationEntry

// Entries returns the history for a chassis, or nil.
func (h ReallocationHistory) Entries(chassisNo string) []ReallocationEntry {
	if h == nil {
		return nil
	}
	return h[chassisNo]
}

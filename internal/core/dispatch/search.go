package dispatch

import (
	"strings"

	"github.com/example/dealerops/internal/models"
)

// searchFields are the dispatch fields tested by free-text search.
func searchFields(e Entry) []string {
	return []string{
		e.ChassisNo,
		e.Customer,
		e.Model,
		e.MatchedPONo,
		e.SAPData,
		e.ScheduledDealer,
		e.Code,
		e.StatusCheck,
		e.DealerCheck,
		e.ReallocatedTo,
		e.Comment,
		e.EstimatedPickupAt,
	}
}

// reallocationFields are the history fields tested by free-text search.
func reallocationFields(r models.ReallocationEntry) []string {
	return []string{r.Customer, r.Model, r.OriginalDealer, r.ReallocatedTo, r.IssueType}
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Matches reports whether the entry or any history entry of its chassis contains term.
// term must already be lower-cased.
func Matches(e Entry, term string, h models.ReallocationHistory) bool {
	if containsFold(searchFields(e), term) {
		return true
	}
	for _, r := range h.Entries(e.ChassisNo) {
		if containsFold(reallocationFields(r), term) {
			return true
		}
	}
	return false
}

// Search keeps entries matching term case-insensitively. A blank term is identity.
func Search(entries []Entry, term string, h models.ReallocationHistory) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, term, h) {
			out = append(out, e)
		}
	}
	return out
}

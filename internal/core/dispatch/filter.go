package dispatch

import (
	"strings"

	"github.com/example/dealerops/internal/models"
)

// Category is a dashboard filter.
type Category string

const (
	CategoryAll              Category = "all"
	CategoryOK               Category = "ok"
	CategoryInvalid          Category = "invalid"
	CategoryOnHold           Category = "onHold"
	CategoryFlaggedStock     Category = "snowy"
	CategoryDispatchEligible Category = "canBeDispatched"
)

// Categories lists every filter in display order.
var Categories = []Category{
	CategoryAll,
	CategoryOK,
	CategoryInvalid,
	CategoryOnHold,
	CategoryFlaggedStock,
	CategoryDispatchEligible,
}

// ParseCategory resolves a category name case-insensitively. Empty means all.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryAll, true
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Match reports whether an entry belongs to the category. Unknown categories match everything.
func (c Category) Match(e Entry) bool {
	switch c {
	case CategoryOK:
		return e.StatusCheck == models.StatusOK
	case CategoryInvalid:
		return e.StatusCheck != models.StatusOK
	case CategoryOnHold:
		return e.OnHold
	case CategoryFlaggedStock:
		return e.FlaggedStock
	case CategoryDispatchEligible:
		return e.DispatchEligible
	default:
		return true
	}
}

// Filter keeps the entries matching the category, preserving order.
// CategoryAll returns the input unchanged.
func Filter(entries []Entry, c Category) []Entry {
	if c == CategoryAll || c == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Partition splits entries into active and on-hold, preserving order.
func Partition(entries []Entry) (active, onHold []Entry) {
	for _, e := range entries {
		if e.OnHold {
			onHold = append(onHold, e)
		} else {
			active = append(active, e)
		}
	}
	return active, onHold
}

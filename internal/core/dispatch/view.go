package dispatch

import (
	"strings"

	"github.com/example/dealerops/internal/models"
)

// ViewQuery selects what the dispatch table shows.
type ViewQuery struct {
	Category Category
	Search   string
	Sort     SortState
}

// View is the display-ready result of a query.
type View struct {
	Rows   []Entry
	Active []Entry
	OnHold []Entry
}

// BuildView filters, searches and sorts entries, then partitions by hold flag.
func BuildView(entries []Entry, q ViewQuery, h models.ReallocationHistory) View {
	rows := Filter(entries, q.Category)
	rows = Search(rows, q.Search, h)
	rows = Sort(rows, q.Sort)

	active, onHold := Partition(rows)
	return View{Rows: rows, Active: active, OnHold: onHold}
}

// forbiddenKeyChars cannot appear in document store keys.
const forbiddenKeyChars = ".#$[]/"

// KeyPlaceholder replaces forbidden characters in store keys.
const KeyPlaceholder = '_'

// SanitizeKey makes a chassis number safe to use as a store key.
func SanitizeKey(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenKeyChars, r) {
			return KeyPlaceholder
		}
		return r
	}, s)
}

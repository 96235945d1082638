package reallocation

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Column is a sortable reallocation-table column.
type Column string

const (
	ColumnChassis        Column = "chassis"
	ColumnCustomer       Column = "customer"
	ColumnModel          Column = "model"
	ColumnOriginalDealer Column = "originalDealer"
	ColumnReallocatedTo  Column = "reallocatedTo"
	ColumnProduction     Column = "regentProduction"
	ColumnIssue          Column = "issue"
	ColumnSubmitted      Column = "submitTime"
)

var columns = []Column{
	ColumnChassis, ColumnCustomer, ColumnModel, ColumnOriginalDealer,
	ColumnReallocatedTo, ColumnProduction, ColumnIssue, ColumnSubmitted,
}

// ParseColumn resolves a column name case-insensitively.
func ParseColumn(s string) (Column, bool) {
	s = strings.TrimSpace(s)
	for _, c := range columns {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func (c Column) value(p Processed) string {
	switch c {
	case ColumnChassis:
		return p.ChassisNo
	case ColumnCustomer:
		return p.Customer
	case ColumnModel:
		return p.Model
	case ColumnOriginalDealer:
		return p.OriginalDealer
	case ColumnReallocatedTo:
		return p.ReallocatedTo
	case ColumnProduction:
		return p.RegentProduction
	case ColumnIssue:
		return p.IssueType
	}
	return ""
}

// Sort returns a stably sorted copy. The submitted column orders by parsed
// instant; the others compare text ignoring case. An empty column returns the input.
func Sort(rows []Processed, c Column, descending bool) []Processed {
	if c == "" {
		return rows
	}

	sorted := slices.Clone(rows)
	col := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	cmp := func(a, b Processed) int {
		if c == ColumnSubmitted {
			return Instant(a.ReallocationEntry).Compare(Instant(b.ReallocationEntry))
		}
		return col.CompareString(c.value(a), c.value(b))
	}

	slices.SortStableFunc(sorted, func(a, b Processed) int {
		if descending {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return sorted
}

package dispatch

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Column is a sortable dispatch column, named as in the document store.
type Column string

const (
	ColumnChassis         Column = "Chassis No"
	ColumnDays            Column = "GR to GI Days"
	ColumnCustomer        Column = "Customer"
	ColumnModel           Column = "Model"
	ColumnSAPData         Column = "SAP Data"
	ColumnScheduledDealer Column = "Scheduled Dealer"
	ColumnMatchedPO       Column = "Matched PO No"
	ColumnCode            Column = "Code"
	ColumnOnHold          Column = "OnHold"
	ColumnStatus          Column = "Statuscheck"
	ColumnDealerCheck     Column = "DealerCheck"
	ColumnReallocatedTo   Column = "reallocatedTo"
	ColumnComment         Column = "Comment"
	ColumnPickup          Column = "EstimatedPickupAt"
)

// columnAliases are the short names accepted on the command line.
var columnAliases = map[string]Column{
	"chassis":   ColumnChassis,
	"days":      ColumnDays,
	"customer":  ColumnCustomer,
	"model":     ColumnModel,
	"sap":       ColumnSAPData,
	"scheduled": ColumnScheduledDealer,
	"po":        ColumnMatchedPO,
	"code":      ColumnCode,
	"hold":      ColumnOnHold,
	"status":    ColumnStatus,
	"dealer":    ColumnDealerCheck,
	"realloc":   ColumnReallocatedTo,
	"comment":   ColumnComment,
	"pickup":    ColumnPickup,
}

// ParseColumn resolves a column by alias or store name, case-insensitively.
func ParseColumn(s string) (Column, bool) {
	s = strings.TrimSpace(s)
	if c, ok := columnAliases[strings.ToLower(s)]; ok {
		return c, true
	}
	for _, c := range columnAliases {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// SortState is the selected column and direction. The zero value means unsorted.
type SortState struct {
	Column     Column
	Descending bool
}

// Toggle selects a column: the same ascending column flips to descending,
// anything else starts ascending.
func (s SortState) Toggle(c Column) SortState {
	if s.Column == c && !s.Descending {
		return SortState{Column: c, Descending: true}
	}
	return SortState{Column: c}
}

func (c Column) value(e Entry) string {
	switch c {
	case ColumnChassis:
		return e.ChassisNo
	case ColumnCustomer:
		return e.Customer
	case ColumnModel:
		return e.Model
	case ColumnSAPData:
		return e.SAPData
	case ColumnScheduledDealer:
		return e.ScheduledDealer
	case ColumnMatchedPO:
		return e.MatchedPONo
	case ColumnCode:
		return e.Code
	case ColumnOnHold:
		return strconv.FormatBool(e.OnHold)
	case ColumnStatus:
		return e.StatusCheck
	case ColumnDealerCheck:
		return e.DealerCheck
	case ColumnReallocatedTo:
		return e.ReallocatedTo
	case ColumnComment:
		return e.Comment
	case ColumnPickup:
		return e.EstimatedPickupAt
	}
	return ""
}

// NewCollator returns a case- and accent-insensitive collator.
// Collators are not safe for concurrent use; create one per sort.
func NewCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// Sort returns a stably sorted copy of entries. An unset column returns the input.
func Sort(entries []Entry, s SortState) []Entry {
	if s.Column == "" {
		return entries
	}

	sorted := slices.Clone(entries)
	col := NewCollator()
	cmp := func(a, b Entry) int {
		if s.Column == ColumnDays {
			return a.GRToGIDays - b.GRToGIDays
		}
		return col.CompareString(s.Column.value(a), s.Column.value(b))
	}

	slices.SortStableFunc(sorted, func(a, b Entry) int {
		if s.Descending {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return sorted
}

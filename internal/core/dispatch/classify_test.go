package dispatch

import (
	"reflect"
	"testing"

	"github.com/example/dealerops/internal/models"
)

func TestValidateDealerCheck(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		scheduled string
		target    string
		want      string
	}{
		{"all three equal", "Acme", "Acme", "Acme", models.StatusOK},
		{"source and scheduled equal, no target", "Acme", "Acme", "", models.StatusOK},
		{"target disagrees with consistent pair", "Acme", "Acme", "Other", models.StatusMismatch},
		{"source differs from scheduled, no target", "Acme", "Other", "", models.StatusMismatch},
		{"source differs from scheduled, target equals source", "Acme", "Other", "Acme", models.StatusMismatch},
		{"source differs from scheduled, target equals scheduled", "Acme", "Other", "Other", models.StatusMismatch},
		{"missing source", "", "Acme", "", models.StatusMismatch},
		{"missing scheduled", "Acme", "", "", models.StatusMismatch},
		{"all empty", "", "", "", models.StatusMismatch},
		{"case sensitive", "acme", "Acme", "", models.StatusMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDealerCheck(tt.source, tt.scheduled, tt.target)
			if got != tt.want {
				t.Errorf("ValidateDealerCheck(%q, %q, %q) = %q, want %q", tt.source, tt.scheduled, tt.target, got, tt.want)
			}
		})
	}
}

func TestClassify_NoReallocation(t *testing.T) {
	records := []models.DispatchRecord{
		{ChassisNo: "C1", SAPData: "Acme", ScheduledDealer: "Acme", StatusCheck: models.StatusOK},
	}

	got := Classify(records, nil)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	e := got[0]
	if e.DealerCheck != models.StatusOK {
		t.Errorf("DealerCheck = %q, want OK", e.DealerCheck)
	}
	if e.FlaggedStock {
		t.Error("FlaggedStock = true, want false")
	}
	if !e.DispatchEligible {
		t.Error("DispatchEligible = false, want true")
	}
	if e.ReallocatedTo != "" {
		t.Errorf("ReallocatedTo = %q, want empty", e.ReallocatedTo)
	}
}

func TestClassify_ReallocatedToFlaggedStock(t *testing.T) {
	records := []models.DispatchRecord{
		{ChassisNo: "C2", SAPData: "Acme", ScheduledDealer: "Acme", StatusCheck: models.StatusOK},
	}
	h := models.ReallocationHistory{
		"C2": {{EntryID: "e1", Date: "01/01/2024", ReallocatedTo: FlaggedStockDealer}},
	}

	e := Classify(records, h)[0]

	if e.DealerCheck != models.StatusMismatch {
		t.Errorf("DealerCheck = %q, want Mismatch", e.DealerCheck)
	}
	if !e.FlaggedStock {
		t.Error("FlaggedStock = false, want true")
	}
	if e.DispatchEligible {
		t.Error("DispatchEligible = true, want false")
	}
	if e.ReallocatedTo != FlaggedStockDealer {
		t.Errorf("ReallocatedTo = %q", e.ReallocatedTo)
	}
}

func TestClassify_ScheduledFlaggedStock(t *testing.T) {
	tests := []struct {
		name        string
		record      models.DispatchRecord
		wantFlagged bool
	}{
		{
			name:        "scheduled to holding stock with consistent checks",
			record:      models.DispatchRecord{ChassisNo: "C", SAPData: FlaggedStockDealer, ScheduledDealer: FlaggedStockDealer, StatusCheck: models.StatusOK},
			wantFlagged: true,
		},
		{
			name:        "scheduled to holding stock but status not OK",
			record:      models.DispatchRecord{ChassisNo: "C", SAPData: FlaggedStockDealer, ScheduledDealer: FlaggedStockDealer, StatusCheck: "Wrong"},
			wantFlagged: false,
		},
		{
			name:        "scheduled to holding stock but dealer mismatch",
			record:      models.DispatchRecord{ChassisNo: "C", SAPData: "Acme", ScheduledDealer: FlaggedStockDealer, StatusCheck: models.StatusOK},
			wantFlagged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify([]models.DispatchRecord{tt.record}, nil)[0]
			if e.FlaggedStock != tt.wantFlagged {
				t.Errorf("FlaggedStock = %v, want %v", e.FlaggedStock, tt.wantFlagged)
			}
			wantEligible := tt.record.StatusCheck == models.StatusOK && !tt.wantFlagged
			if e.DispatchEligible != wantEligible {
				t.Errorf("DispatchEligible = %v, want %v", e.DispatchEligible, wantEligible)
			}
		})
	}
}

func TestClassify_PreservesOrderAndIsIdempotent(t *testing.T) {
	records := []models.DispatchRecord{
		{ChassisNo: "Z", SAPData: "A", ScheduledDealer: "A", StatusCheck: models.StatusOK},
		{ChassisNo: "A", SAPData: "A", ScheduledDealer: "B", StatusCheck: "Bad"},
		{ChassisNo: "M", SAPData: "A", ScheduledDealer: "A", StatusCheck: models.StatusOK, DealerCheck: "stale"},
	}
	h := models.ReallocationHistory{
		"M": {
			{EntryID: "1", Date: "01/01/2024", ReallocatedTo: "B"},
			{EntryID: "2", Date: "02/01/2024", ReallocatedTo: "A"},
		},
	}

	first := Classify(records, h)
	second := Classify(records, h)

	if !reflect.DeepEqual(first, second) {
		t.Error("Classify is not idempotent")
	}
	for i, e := range first {
		if e.ChassisNo != records[i].ChassisNo {
			t.Errorf("position %d = %s, want %s", i, e.ChassisNo, records[i].ChassisNo)
		}
	}
	if first[2].DealerCheck != models.StatusOK {
		t.Errorf("stale DealerCheck must be recomputed, got %q", first[2].DealerCheck)
	}
	if records[2].DealerCheck != "stale" {
		t.Error("Classify must not modify its input")
	}
}

func TestComputeStats(t *testing.T) {
	records := []models.DispatchRecord{
		{ChassisNo: "C1", SAPData: "Acme", ScheduledDealer: "Acme", StatusCheck: models.StatusOK},
		{ChassisNo: "C2", SAPData: "Acme", ScheduledDealer: "Acme", StatusCheck: models.StatusOK, OnHold: true},
		{ChassisNo: "C3", SAPData: "Acme", ScheduledDealer: "Other", StatusCheck: "Mismatch"},
		{ChassisNo: "C4", SAPData: FlaggedStockDealer, ScheduledDealer: FlaggedStockDealer, StatusCheck: models.StatusOK},
	}
	h := models.ReallocationHistory{
		"C2": {{EntryID: "e", SubmitTime: "2024-01-01T00:00:00Z", ReallocatedTo: FlaggedStockDealer}},
	}

	got := ComputeStats(records, h)
	want := Stats{
		Total:            4,
		StatusOK:         3,
		Invalid:          1,
		FlaggedStock:     2,
		DispatchEligible: 1,
		OnHold:           1,
	}
	if got != want {
		t.Errorf("ComputeStats() = %+v, want %+v", got, want)
	}
}

func TestDaysBand(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "green"}, {7, "green"}, {8, "yellow"}, {14, "yellow"}, {15, "orange"}, {30, "orange"}, {31, "red"},
	}
	for _, tt := range tests {
		if got := DaysBand(tt.days); got != tt.want {
			t.Errorf("DaysBand(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

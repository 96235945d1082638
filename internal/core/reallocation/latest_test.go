package reallocation

import (
	"testing"

	"github.com/example/dealerops/internal/models"
)

func TestLatest(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.ReallocationEntry
		wantID  string
		wantOK  bool
	}{
		{
			name:   "empty history",
			wantOK: false,
		},
		{
			name: "day month year compares by month",
			entries: []models.ReallocationEntry{
				{EntryID: "a", Date: "15/01/2024"},
				{EntryID: "b", Date: "01/02/2024"},
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name: "submit time used when date missing",
			entries: []models.ReallocationEntry{
				{EntryID: "a", SubmitTime: "2024-05-01T10:00:00Z"},
				{EntryID: "b", SubmitTime: "2024-04-01T10:00:00Z"},
			},
			wantID: "a",
			wantOK: true,
		},
		{
			name: "date preferred over submit time",
			entries: []models.ReallocationEntry{
				{EntryID: "a", Date: "01/01/2024", SubmitTime: "2030-01-01T00:00:00Z"},
				{EntryID: "b", Date: "02/01/2024", SubmitTime: "2020-01-01T00:00:00Z"},
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name: "unparseable date falls back to submit time",
			entries: []models.ReallocationEntry{
				{EntryID: "a", Date: "soon", SubmitTime: "2024-06-01T00:00:00Z"},
				{EntryID: "b", Date: "01/05/2024"},
			},
			wantID: "a",
			wantOK: true,
		},
		{
			name: "unparseable entry never wins",
			entries: []models.ReallocationEntry{
				{EntryID: "a", Date: "garbage"},
				{EntryID: "b", Date: "01/01/1950"},
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name: "ties keep the first entry",
			entries: []models.ReallocationEntry{
				{EntryID: "a", Date: "01/01/2024"},
				{EntryID: "b", Date: "01/01/2024"},
			},
			wantID: "a",
			wantOK: true,
		},
		{
			name: "all unparseable keeps the first entry",
			entries: []models.ReallocationEntry{
				{EntryID: "a"},
				{EntryID: "b"},
			},
			wantID: "a",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Latest(tt.entries)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.EntryID != tt.wantID {
				t.Errorf("Latest() = %s, want %s", got.EntryID, tt.wantID)
			}
		})
	}
}

func TestLatestIsMaximal(t *testing.T) {
	entries := []models.ReallocationEntry{
		{EntryID: "1", Date: "03/03/2023"},
		{EntryID: "2", SubmitTime: "2024-01-10T00:00:00Z"},
		{EntryID: "3", Date: "31/12/2023"},
		{EntryID: "4", Date: "bad", SubmitTime: "bad"},
		{EntryID: "5", Date: "09/01/2024"},
	}

	latest, ok := Latest(entries)
	if !ok {
		t.Fatal("expected a selection")
	}
	at := Instant(latest)
	for _, e := range entries {
		if Instant(e).After(at) {
			t.Errorf("entry %s (%v) is later than selected %s (%v)", e.EntryID, Instant(e), latest.EntryID, at)
		}
	}
}

func TestDealerOf(t *testing.T) {
	tests := []struct {
		name  string
		entry models.ReallocationEntry
		want  string
	}{
		{"reallocated to wins", models.ReallocationEntry{ReallocatedTo: "A", Dealer: "B", Customer: "C"}, "A"},
		{"dealer fallback", models.ReallocationEntry{Dealer: "B", Customer: "C"}, "B"},
		{"customer fallback", models.ReallocationEntry{Customer: "C"}, "C"},
		{"nothing", models.ReallocationEntry{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DealerOf(tt.entry); got != tt.want {
				t.Errorf("DealerOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTargets(t *testing.T) {
	h := models.ReallocationHistory{
		"C1": {
			{EntryID: "e1", Date: "01/01/2024", ReallocatedTo: "Old Dealer"},
			{EntryID: "e2", Date: "01/03/2024", ReallocatedTo: "Snowy Stock"},
		},
		"C2":    {{EntryID: "e1", SubmitTime: "2024-02-02T00:00:00Z", ReallocatedTo: "Acme"}},
		"EMPTY": {},
	}

	targets := ResolveTargets(h)

	if targets["C1"] != "Snowy Stock" {
		t.Errorf("C1 target = %q, want Snowy Stock", targets["C1"])
	}
	if targets["C2"] != "Acme" {
		t.Errorf("C2 target = %q, want Acme", targets["C2"])
	}
	if _, ok := targets["EMPTY"]; ok {
		t.Error("chassis with no entries must be absent")
	}
	if _, ok := targets["MISSING"]; ok {
		t.Error("unknown chassis must be absent")
	}
}

package sqlite_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/dealerops/internal/adapters/sqlite"
	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/secondary"
)

func TestDocumentStore_FetchDispatch_KeepsUpstreamOrder(t *testing.T) {
	db := setupTestDB(t)
	seedDispatch(t, db, "C2", "Acme", "Acme", 1)
	seedDispatch(t, db, "C1", "Acme", "Acme", 0)
	store := sqlite.NewDocumentStore(db, &recordingFeed{}, quietLogger())

	records, err := store.FetchDispatch(context.Background())
	if err != nil {
		t.Fatalf("FetchDispatch failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ChassisNo != "C1" || records[1].ChassisNo != "C2" {
		t.Errorf("unexpected order: %s, %s", records[0].ChassisNo, records[1].ChassisNo)
	}
	if records[0].Comment != "" || records[0].OnHold {
		t.Errorf("expected empty defaults for NULL columns, got %+v", records[0])
	}
}

func TestDocumentStore_FetchReallocations_GroupsByChassis(t *testing.T) {
	db := setupTestDB(t)
	seedReallocation(t, db, "C3", "b", "Acme", "01/02/2024", 1)
	seedReallocation(t, db, "C3", "a", "Snowy Stock", "15/01/2024", 0)
	seedReallocation(t, db, "C4", "x", "Bush", "", 0)
	store := sqlite.NewDocumentStore(db, &recordingFeed{}, quietLogger())

	history, err := store.FetchReallocations(context.Background())
	if err != nil {
		t.Fatalf("FetchReallocations failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 chassis, got %d", len(history))
	}
	got := []string{history["C3"][0].EntryID, history["C3"][1].EntryID}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected position order [a b], got %v", got)
	}
}

func TestDocumentStore_PatchDispatch(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		fields  map[string]any
		wantErr error
		check   func(t *testing.T, r models.DispatchRecord)
	}{
		{
			name: "sets hold metadata",
			key:  "C1",
			fields: map[string]any{
				"OnHold":   true,
				"OnHoldAt": "2024-03-01T10:00:00Z",
				"OnHoldBy": "ops",
			},
			check: func(t *testing.T, r models.DispatchRecord) {
				if !r.OnHold || r.OnHoldAt != "2024-03-01T10:00:00Z" || r.OnHoldBy != "ops" {
					t.Errorf("hold fields not written: %+v", r)
				}
			},
		},
		{
			name:   "nil clears a field",
			key:    "C1",
			fields: map[string]any{"EstimatedPickupAt": nil},
			check: func(t *testing.T, r models.DispatchRecord) {
				if r.EstimatedPickupAt != "" {
					t.Errorf("expected pickup cleared, got %q", r.EstimatedPickupAt)
				}
			},
		},
		{
			name:    "missing record",
			key:     "NOPE",
			fields:  map[string]any{"Comment": "x"},
			wantErr: sqlite.ErrRecordNotFound,
		},
		{
			name:    "unknown field",
			key:     "C1",
			fields:  map[string]any{"SAPData": "x"},
			wantErr: sqlite.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedDispatch(t, db, "C1", "Acme", "Acme", 0)
			_, _ = db.Exec(`UPDATE dispatch SET estimated_pickup_at = '2030-01-01T09:00:00Z' WHERE id = 'C1'`)
			feed := &recordingFeed{}
			store := sqlite.NewDocumentStore(db, feed, quietLogger())
			ctx := context.Background()

			err := store.PatchRecord(ctx, secondary.CollectionDispatch, tt.key, tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(feed.published) != 0 {
					t.Errorf("failed write must not be announced, got %v", feed.published)
				}
				return
			}
			if err != nil {
				t.Fatalf("PatchRecord failed: %v", err)
			}
			if !reflect.DeepEqual(feed.published, []string{secondary.CollectionDispatch}) {
				t.Errorf("expected one Dispatch announcement, got %v", feed.published)
			}

			records, err := store.FetchDispatch(ctx)
			if err != nil {
				t.Fatalf("FetchDispatch failed: %v", err)
			}
			tt.check(t, records[0])
		})
	}
}

func TestDocumentStore_PatchStockSheet_Upserts(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDocumentStore(db, &recordingFeed{}, quietLogger())
	ctx := context.Background()

	err := store.PatchRecord(ctx, secondary.CollectionStockSheet, "C_1", map[string]any{
		"chassisNo":  "C.1",
		"dispatched": false,
		"createdAt":  "2024-03-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("create via patch failed: %v", err)
	}
	err = store.PatchRecord(ctx, secondary.CollectionStockSheet, "C_1", map[string]any{
		"update":    "waiting on awning",
		"yearNotes": "MY25",
	})
	if err != nil {
		t.Fatalf("update via patch failed: %v", err)
	}

	notes, err := store.FetchStockSheet(ctx)
	if err != nil {
		t.Fatalf("FetchStockSheet failed: %v", err)
	}
	want := models.StockSheetNote{
		Key:       "C_1",
		ChassisNo: "C.1",
		Update:    "waiting on awning",
		YearNotes: "MY25",
		CreatedAt: "2024-03-01T00:00:00Z",
	}
	if len(notes) != 1 || !reflect.DeepEqual(notes[0], want) {
		t.Errorf("got %+v, want %+v", notes, want)
	}
}

func TestDocumentStore_PatchRecord_UnknownCollection(t *testing.T) {
	store := sqlite.NewDocumentStore(setupTestDB(t), &recordingFeed{}, quietLogger())
	err := store.PatchRecord(context.Background(), secondary.CollectionSchedule, "C1", map[string]any{"x": 1})
	if !errors.Is(err, sqlite.ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestDocumentStore_AppendAndDelete(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDocumentStore(db, &recordingFeed{}, quietLogger())
	ctx := context.Background()

	id, err := store.AppendRecord(ctx, secondary.CollectionDispatchError, map[string]any{
		"chassisNo":    "C1",
		"errorDetails": "Dealer check mismatch",
		"timestamp":    "2024-03-01T00:00:00Z",
		"status":       "reported",
	})
	if err != nil {
		t.Fatalf("AppendRecord failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	reports, err := store.ListDispatchErrors(ctx)
	if err != nil {
		t.Fatalf("ListDispatchErrors failed: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != id || reports[0].Status != "reported" {
		t.Errorf("unexpected reports: %+v", reports)
	}

	if err := store.DeleteRecord(ctx, secondary.CollectionDispatchError, id); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := store.DeleteRecord(ctx, secondary.CollectionDispatchError, id); err != nil {
		t.Errorf("deleting a missing record should succeed, got %v", err)
	}
	reports, _ = store.ListDispatchErrors(ctx)
	if len(reports) != 0 {
		t.Errorf("expected no reports after delete, got %d", len(reports))
	}

	if _, err := store.AppendRecord(ctx, secondary.CollectionDispatch, map[string]any{}); !errors.Is(err, sqlite.ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection for Dispatch append, got %v", err)
	}
}

func TestDocumentStore_SubscribeRefetchesOnAnnouncement(t *testing.T) {
	db := setupTestDB(t)
	seedDispatch(t, db, "C1", "Acme", "Acme", 0)
	feed := &recordingFeed{}
	store := sqlite.NewDocumentStore(db, feed, quietLogger())
	ctx := context.Background()

	var deliveries [][]models.DispatchRecord
	unsub, err := store.SubscribeDispatch(func(r []models.DispatchRecord) {
		deliveries = append(deliveries, r)
	})
	if err != nil {
		t.Fatalf("SubscribeDispatch failed: %v", err)
	}
	if len(deliveries) != 0 {
		t.Fatalf("expected no initial delivery, got %d", len(deliveries))
	}

	if err := store.PatchRecord(ctx, secondary.CollectionDispatch, "C1", map[string]any{"Comment": "bay 4"}); err != nil {
		t.Fatalf("PatchRecord failed: %v", err)
	}
	// unrelated collection
	if err := store.PatchRecord(ctx, secondary.CollectionStockSheet, "C1", map[string]any{"update": "x"}); err != nil {
		t.Fatalf("PatchRecord failed: %v", err)
	}

	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(deliveries))
	}
	if deliveries[0][0].Comment != "bay 4" {
		t.Errorf("delivery should carry the new comment, got %q", deliveries[0][0].Comment)
	}

	unsub()
	_ = store.PatchRecord(ctx, secondary.CollectionDispatch, "C1", map[string]any{"Comment": "bay 5"})
	if len(deliveries) != 1 {
		t.Errorf("expected no delivery after unsubscribe, got %d", len(deliveries))
	}
}

func TestDocumentStore_PublishFailureDoesNotFailWrite(t *testing.T) {
	db := setupTestDB(t)
	seedDispatch(t, db, "C1", "Acme", "Acme", 0)
	store := sqlite.NewDocumentStore(db, &recordingFeed{publishErr: errors.New("feed down")}, quietLogger())

	if err := store.PatchRecord(context.Background(), secondary.CollectionDispatch, "C1", map[string]any{"Comment": "x"}); err != nil {
		t.Errorf("expected write to succeed, got %v", err)
	}
}

func TestDocumentStore_ReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	seedDispatch(t, db, "OLD", "Acme", "Acme", 0)
	feed := &recordingFeed{}
	store := sqlite.NewDocumentStore(db, feed, quietLogger())
	ctx := context.Background()

	snap := secondary.Snapshot{
		Dispatch: []models.DispatchRecord{
			{ChassisNo: "B/2", SAPData: "Acme", ScheduledDealer: "Acme", StatusCheck: "OK"},
			{ChassisNo: "A1", SAPData: "Bush", ScheduledDealer: "Acme", StatusCheck: "Mismatch", OnHold: true},
		},
		Reallocations: models.ReallocationHistory{
			"A1": {{EntryID: "e1", ReallocatedTo: "Snowy Stock", SubmitTime: "2024-01-01T00:00:00Z"}},
		},
		Schedule: []models.ScheduleEntry{
			{ChassisNo: "A1", RegentProduction: "Finished"},
			{ChassisNo: "B/2", RegentProduction: "Chassis Welding"},
		},
	}

	if err := store.ReplaceAll(ctx, snap); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	records, _ := store.FetchDispatch(ctx)
	if len(records) != 2 || records[0].ChassisNo != "B/2" || !records[1].OnHold {
		t.Errorf("unexpected dispatch after replace: %+v", records)
	}
	var id string
	_ = db.QueryRow(`SELECT id FROM dispatch WHERE chassis_no = 'B/2'`).Scan(&id)
	if id != "B_2" {
		t.Errorf("expected sanitised key B_2, got %q", id)
	}

	history, _ := store.FetchReallocations(ctx)
	if history["A1"][0].ReallocatedTo != "Snowy Stock" {
		t.Errorf("unexpected reallocations: %+v", history)
	}
	schedule, _ := store.FetchSchedule(ctx)
	if len(schedule) != 2 || schedule[0].ChassisNo != "A1" {
		t.Errorf("unexpected schedule: %+v", schedule)
	}

	want := []string{secondary.CollectionDispatch, secondary.CollectionReallocation, secondary.CollectionSchedule}
	if !reflect.DeepEqual(feed.published, want) {
		t.Errorf("announcements = %v, want %v", feed.published, want)
	}
}

func TestDocumentStore_ReplaceAll_KeepsNotesWhenSnapshotHasNone(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDocumentStore(db, &recordingFeed{}, quietLogger())
	ctx := context.Background()
	_ = store.PatchRecord(ctx, secondary.CollectionStockSheet, "C1", map[string]any{"update": "keep me"})

	if err := store.ReplaceAll(ctx, secondary.Snapshot{}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	notes, _ := store.FetchStockSheet(ctx)
	if len(notes) != 1 || notes[0].Update != "keep me" {
		t.Errorf("expected operator notes to survive, got %+v", notes)
	}
}

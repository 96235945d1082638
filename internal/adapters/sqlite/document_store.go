package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/core/dispatch"
	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/secondary"
)

var (
	// ErrUnknownCollection is returned for collections the store does not hold.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownField is returned when a patch names a field with no column.
	ErrUnknownField = errors.New("unknown field")
	// ErrRecordNotFound is returned when patching a dispatch record that does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// writable columns per collection, keyed by document field name
var (
	dispatchColumns = map[string]string{
		string(models.FieldOnHold):            "on_hold",
		string(models.FieldOnHoldAt):          "on_hold_at",
		string(models.FieldOnHoldBy):          "on_hold_by",
		string(models.FieldComment):           "comment",
		string(models.FieldEstimatedPickupAt): "estimated_pickup_at",
	}
	noteColumns = map[string]string{
		"chassisNo":  "chassis_no",
		"update":     "update_text",
		"yearNotes":  "year_notes",
		"dispatched": "dispatched",
		"createdAt":  "created_at",
		"updatedAt":  "updated_at",
	}
	errorColumns = map[string]string{
		"chassisNo":    "chassis_no",
		"errorDetails": "error_details",
		"timestamp":    "timestamp",
		"status":       "status",
	}
	deletableTables = map[string]string{
		secondary.CollectionDispatch:      "dispatch",
		secondary.CollectionStockSheet:    "stock_sheet_notes",
		secondary.CollectionDispatchError: "dispatch_errors",
	}
)

// DocumentStore implements secondary.DocumentStore and secondary.SnapshotWriter with SQLite.
// Every committed write is announced on the change feed; subscribers refetch on announcement.
type DocumentStore struct {
	db     *sql.DB
	feed   secondary.ChangeFeed
	logger *logrus.Logger
}

// NewDocumentStore creates a new SQLite document store.
func NewDocumentStore(db *sql.DB, feed secondary.ChangeFeed, logger *logrus.Logger) *DocumentStore {
	return &DocumentStore{db: db, feed: feed, logger: logger}
}

// FetchDispatch reads the dispatch collection in upstream order.
func (s *DocumentStore) FetchDispatch(ctx context.Context) ([]models.DispatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chassis_no, COALESCE(matched_po_no, ''), gr_to_gi_days, days_from_gr,
			COALESCE(gr_date, ''), COALESCE(pgi_date, ''), COALESCE(customer, ''), COALESCE(model, ''),
			COALESCE(sap_data, ''), COALESCE(scheduled_dealer, ''), COALESCE(code, ''), COALESCE(status_check, ''),
			on_hold, COALESCE(on_hold_at, ''), COALESCE(on_hold_by, ''),
			COALESCE(comment, ''), COALESCE(estimated_pickup_at, '')
		FROM dispatch ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dispatch: %w", err)
	}
	defer rows.Close()

	var records []models.DispatchRecord
	for rows.Next() {
		var r models.DispatchRecord
		if err := rows.Scan(&r.ChassisNo, &r.MatchedPONo, &r.GRToGIDays, &r.DaysFromGR,
			&r.GRDate, &r.PGIDate, &r.Customer, &r.Model,
			&r.SAPData, &r.ScheduledDealer, &r.Code, &r.StatusCheck,
			&r.OnHold, &r.OnHoldAt, &r.OnHoldBy,
			&r.Comment, &r.EstimatedPickupAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FetchReallocations reads the reallocation history grouped by chassis.
func (s *DocumentStore) FetchReallocations(ctx context.Context) (models.ReallocationHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chassis_no, entry_id, COALESCE(customer, ''), COALESCE(model, ''),
			COALESCE(original_dealer, ''), COALESCE(reallocated_to, ''), COALESCE(dealer, ''),
			COALESCE(regent_production, ''), COALESCE(submit_time, ''), COALESCE(date, ''),
			COALESCE(signed_plans_received, ''), COALESCE(issue_type, '')
		FROM reallocations ORDER BY chassis_no, position, entry_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reallocations: %w", err)
	}
	defer rows.Close()

	history := models.ReallocationHistory{}
	for rows.Next() {
		var chassisNo string
		var e models.ReallocationEntry
		if err := rows.Scan(&chassisNo, &e.EntryID, &e.Customer, &e.Model,
			&e.OriginalDealer, &e.ReallocatedTo, &e.Dealer,
			&e.RegentProduction, &e.SubmitTime, &e.Date,
			&e.SignedPlansReceived, &e.IssueType); err != nil {
			return nil, fmt.Errorf("failed to scan reallocation entry: %w", err)
		}
		history[chassisNo] = append(history[chassisNo], e)
	}
	return history, rows.Err()
}

// FetchSchedule reads the production schedule in upstream order.
func (s *DocumentStore) FetchSchedule(ctx context.Context) ([]models.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chassis_no, COALESCE(regent_production, ''), COALESCE(model, ''),
			COALESCE(dealer, ''), COALESCE(customer, '')
		FROM schedule ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.ChassisNo, &e.RegentProduction, &e.Model, &e.Dealer, &e.Customer); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FetchStockSheet reads the stock-sheet notes ordered by key.
func (s *DocumentStore) FetchStockSheet(ctx context.Context) ([]models.StockSheetNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(chassis_no, ''), COALESCE(update_text, ''), COALESCE(year_notes, ''),
			dispatched, COALESCE(created_at, ''), COALESCE(updated_at, '')
		FROM stock_sheet_notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock sheet: %w", err)
	}
	defer rows.Close()

	var notes []models.StockSheetNote
	for rows.Next() {
		var n models.StockSheetNote
		if err := rows.Scan(&n.Key, &n.ChassisNo, &n.Update, &n.YearNotes,
			&n.Dispatched, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock sheet note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// SubscribeDispatch delivers the dispatch collection after every announced change.
func (s *DocumentStore) SubscribeDispatch(fn func([]models.DispatchRecord)) (secondary.Unsubscribe, error) {
	return s.listen(secondary.CollectionDispatch, func(ctx context.Context) error {
		records, err := s.FetchDispatch(ctx)
		if err != nil {
			return err
		}
		fn(records)
		return nil
	})
}

// SubscribeReallocations delivers the reallocation history after every announced change.
func (s *DocumentStore) SubscribeReallocations(fn func(models.ReallocationHistory)) (secondary.Unsubscribe, error) {
	return s.listen(secondary.CollectionReallocation, func(ctx context.Context) error {
		history, err := s.FetchReallocations(ctx)
		if err != nil {
			return err
		}
		fn(history)
		return nil
	})
}

// SubscribeStockSheet delivers the stock sheet after every announced change.
func (s *DocumentStore) SubscribeStockSheet(fn func([]models.StockSheetNote)) (secondary.Unsubscribe, error) {
	return s.listen(secondary.CollectionStockSheet, func(ctx context.Context) error {
		notes, err := s.FetchStockSheet(ctx)
		if err != nil {
			return err
		}
		fn(notes)
		return nil
	})
}

func (s *DocumentStore) listen(collection string, deliver func(ctx context.Context) error) (secondary.Unsubscribe, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("failed to subscribe to %s: no change feed", collection)
	}
	unsub, err := s.feed.Listen(func(changed string) {
		if changed != collection {
			return
		}
		if err := deliver(context.Background()); err != nil {
			config.LogError(s.logger, "sqlite", "listen", "refetch after change failed",
				logrus.Fields{"collection": collection}, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}
	return unsub, nil
}

// PatchRecord updates some fields of one record.
// Dispatch records must exist; stock-sheet notes are created on first write.
func (s *DocumentStore) PatchRecord(ctx context.Context, collection, key string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	switch collection {
	case secondary.CollectionDispatch:
		if err := s.patchDispatch(ctx, key, fields); err != nil {
			return err
		}
	case secondary.CollectionStockSheet:
		if err := s.upsertNote(ctx, key, fields); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	s.publish(ctx, collection)
	return nil
}

func (s *DocumentStore) patchDispatch(ctx context.Context, key string, fields map[string]any) error {
	cols, args, err := columnsFor(dispatchColumns, fields)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, key)

	result, err := s.db.ExecContext(ctx,
		"UPDATE dispatch SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update dispatch record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify dispatch update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: dispatch %s", ErrRecordNotFound, key)
	}
	return nil
}

func (s *DocumentStore) upsertNote(ctx context.Context, key string, fields map[string]any) error {
	cols, args, err := columnsFor(noteColumns, fields)
	if err != nil {
		return err
	}

	placeholders := make([]string, 0, len(cols)+1)
	updates := make([]string, 0, len(cols))
	placeholders = append(placeholders, "?")
	for _, c := range cols {
		placeholders = append(placeholders, "?")
		updates = append(updates, c+" = excluded."+c)
	}

	query := fmt.Sprintf(
		"INSERT INTO stock_sheet_notes (id, %s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
	if _, err := s.db.ExecContext(ctx, query, append([]any{key}, args...)...); err != nil {
		return fmt.Errorf("failed to write stock sheet note: %w", err)
	}
	return nil
}

// AppendRecord inserts a new record under a generated key.
// Only the dispatch error log accepts appends.
func (s *DocumentStore) AppendRecord(ctx context.Context, collection string, value map[string]any) (string, error) {
	if collection != secondary.CollectionDispatchError {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	cols, args, err := columnsFor(errorColumns, value)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+1), ", ")
	query := fmt.Sprintf("INSERT INTO dispatch_errors (id, %s) VALUES (%s)", strings.Join(cols, ", "), placeholders)
	if _, err := s.db.ExecContext(ctx, query, append([]any{id}, args...)...); err != nil {
		return "", fmt.Errorf("failed to append dispatch error: %w", err)
	}

	s.publish(ctx, collection)
	return id, nil
}

// DeleteRecord removes one record. Deleting a missing record is not an error.
func (s *DocumentStore) DeleteRecord(ctx context.Context, collection, key string) error {
	table, ok := deletableTables[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", collection, err)
	}
	s.publish(ctx, collection)
	return nil
}

// ListDispatchErrors returns the mismatch reports, newest first.
func (s *DocumentStore) ListDispatchErrors(ctx context.Context) ([]models.DispatchError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chassis_no, COALESCE(error_details, ''), COALESCE(timestamp, ''), COALESCE(status, '')
		FROM dispatch_errors ORDER BY timestamp DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch errors: %w", err)
	}
	defer rows.Close()

	var reports []models.DispatchError
	for rows.Next() {
		var e models.DispatchError
		if err := rows.Scan(&e.ID, &e.ChassisNo, &e.ErrorDetails, &e.Timestamp, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch error: %w", err)
		}
		reports = append(reports, e)
	}
	return reports, rows.Err()
}

// ReplaceAll swaps the four synced collections for the snapshot.
// Stock-sheet notes and the error log are operator data and are replaced only
// when the snapshot carries notes.
func (s *DocumentStore) ReplaceAll(ctx context.Context, snap secondary.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{"dispatch", "reallocations", "schedule"}
	if snap.StockSheet != nil {
		tables = append(tables, "stock_sheet_notes")
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, r := range snap.Dispatch {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO dispatch (id, chassis_no, matched_po_no, gr_to_gi_days, days_from_gr,
				gr_date, pgi_date, customer, model, sap_data, scheduled_dealer, code, status_check,
				on_hold, on_hold_at, on_hold_by, comment, estimated_pickup_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			dispatch.SanitizeKey(r.ChassisNo), r.ChassisNo, nullString(r.MatchedPONo), r.GRToGIDays, r.DaysFromGR,
			nullString(r.GRDate), nullString(r.PGIDate), nullString(r.Customer), nullString(r.Model),
			nullString(r.SAPData), nullString(r.ScheduledDealer), nullString(r.Code), nullString(r.StatusCheck),
			r.OnHold, nullString(r.OnHoldAt), nullString(r.OnHoldBy), nullString(r.Comment),
			nullString(r.EstimatedPickupAt), i)
		if err != nil {
			return fmt.Errorf("failed to insert dispatch %s: %w", r.ChassisNo, err)
		}
	}

	chassis := make([]string, 0, len(snap.Reallocations))
	for c := range snap.Reallocations {
		chassis = append(chassis, c)
	}
	sort.Strings(chassis)
	for _, c := range chassis {
		for i, e := range snap.Reallocations[c] {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO reallocations (chassis_no, entry_id, customer, model, original_dealer,
					reallocated_to, dealer, regent_production, submit_time, date, signed_plans_received,
					issue_type, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c, e.EntryID, nullString(e.Customer), nullString(e.Model), nullString(e.OriginalDealer),
				nullString(e.ReallocatedTo), nullString(e.Dealer), nullString(e.RegentProduction),
				nullString(e.SubmitTime), nullString(e.Date), nullString(e.SignedPlansReceived),
				nullString(e.IssueType), i)
			if err != nil {
				return fmt.Errorf("failed to insert reallocation %s/%s: %w", c, e.EntryID, err)
			}
		}
	}

	for i, e := range snap.Schedule {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule (position, chassis_no, regent_production, model, dealer, customer)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, e.ChassisNo, nullString(e.RegentProduction), nullString(e.Model), nullString(e.Dealer), nullString(e.Customer))
		if err != nil {
			return fmt.Errorf("failed to insert schedule entry %s: %w", e.ChassisNo, err)
		}
	}

	for _, n := range snap.StockSheet {
		key := n.Key
		if key == "" {
			key = dispatch.SanitizeKey(n.Chassis())
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO stock_sheet_notes (id, chassis_no, update_text, year_notes, dispatched, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			key, nullString(n.ChassisNo), nullString(n.Update), nullString(n.YearNotes), n.Dispatched,
			nullString(n.CreatedAt), nullString(n.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert stock sheet note %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	for _, c := range []string{secondary.CollectionDispatch, secondary.CollectionReallocation, secondary.CollectionSchedule} {
		s.publish(ctx, c)
	}
	if snap.StockSheet != nil {
		s.publish(ctx, secondary.CollectionStockSheet)
	}
	return nil
}

// publish announces a committed change. The write already succeeded, so a
// feed failure is logged rather than returned.
func (s *DocumentStore) publish(ctx context.Context, collection string) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, collection); err != nil {
		config.LogError(s.logger, "sqlite", "publish", "change announcement failed",
			logrus.Fields{"collection": collection}, err)
	}
}

// columnsFor maps document fields to columns in a stable order.
func columnsFor(allowed map[string]string, fields map[string]any) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := allowed[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		cols = append(cols, allowed[name])
		args = append(args, fields[name])
	}
	return cols, args, nil
}

var (
	_ secondary.DocumentStore  = (*DocumentStore)(nil)
	_ secondary.SnapshotWriter = (*DocumentStore)(nil)
)

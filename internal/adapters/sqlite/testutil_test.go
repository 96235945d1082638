// Package sqlite_test contains integration tests for the SQLite adapters.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/example/dealerops/internal/db"
	"github.com/example/dealerops/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// every pooled connection would otherwise get its own empty database
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedDispatch inserts a dispatch row keyed by its chassis number.
func seedDispatch(t *testing.T, db *sql.DB, chassisNo, sapData, scheduledDealer string, position int) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO dispatch (id, chassis_no, sap_data, scheduled_dealer, status_check, position) VALUES (?, ?, ?, ?, 'OK', ?)`,
		chassisNo, chassisNo, sapData, scheduledDealer, position)
	if err != nil {
		t.Fatalf("failed to seed dispatch: %v", err)
	}
}

// seedReallocation inserts one reallocation entry.
func seedReallocation(t *testing.T, db *sql.DB, chassisNo, entryID, reallocatedTo, date string, position int) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO reallocations (chassis_no, entry_id, reallocated_to, date, position) VALUES (?, ?, ?, ?, ?)`,
		chassisNo, entryID, reallocatedTo, date, position)
	if err != nil {
		t.Fatalf("failed to seed reallocation: %v", err)
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// recordingFeed is a synchronous ChangeFeed that remembers every announcement.
type recordingFeed struct {
	published  []string
	listeners  []func(string)
	publishErr error
}

func (f *recordingFeed) Publish(_ context.Context, collection string) error {
	f.published = append(f.published, collection)
	if f.publishErr != nil {
		return f.publishErr
	}
	for _, fn := range f.listeners {
		fn(collection)
	}
	return nil
}

func (f *recordingFeed) Listen(fn func(string)) (secondary.Unsubscribe, error) {
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() { f.listeners[idx] = func(string) {} }, nil
}

func (f *recordingFeed) Close() error { return nil }

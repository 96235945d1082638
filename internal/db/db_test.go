package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func tableColumns(t *testing.T, conn *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := conn.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s): %v", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols[name] = true
	}
	return cols
}

func TestOpen_FreshInstall(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"dispatch", "reallocations", "schedule", "stock_sheet_notes", "dispatch_errors", "audit_logs"} {
		if len(tableColumns(t, conn, table)) == 0 {
			t.Errorf("table %s missing", table)
		}
	}

	var version int
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("schema_version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestRunMigrations_MatchesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	// a database that stopped at the first release
	if err := createVersionTable(conn); err != nil {
		t.Fatal(err)
	}
	tx, _ := conn.Begin()
	if err := migrationV1(tx); err != nil {
		t.Fatalf("migrationV1: %v", err)
	}
	tx.Exec("INSERT INTO schema_version (version) VALUES (1)")
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	fresh, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer fresh.Close()

	for _, table := range []string{"dispatch", "audit_logs"} {
		want := tableColumns(t, fresh, table)
		got := tableColumns(t, conn, table)
		for col := range want {
			if !got[col] {
				t.Errorf("migrated %s missing column %s", table, col)
			}
		}
	}
}

func TestSeedFixtures(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	if err := SeedFixtures(conn); err != nil {
		t.Fatalf("SeedFixtures failed: %v", err)
	}
	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM dispatch").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("dispatch rows = %d, want 4", count)
	}
}

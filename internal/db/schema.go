package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests create
// their databases from GetSchemaSQL() and never hardcode CREATE TABLE
// statements, so a repository referencing a column missing here fails
// with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Dispatch records, keyed by sanitised chassis number
CREATE TABLE IF NOT EXISTS dispatch (
	id TEXT PRIMARY KEY,
	chassis_no TEXT NOT NULL,
	matched_po_no TEXT,
	gr_to_gi_days INTEGER NOT NULL DEFAULT 0,
	days_from_gr INTEGER NOT NULL DEFAULT 0,
	gr_date TEXT,
	pgi_date TEXT,
	customer TEXT,
	model TEXT,
	sap_data TEXT,
	scheduled_dealer TEXT,
	code TEXT,
	status_check TEXT,
	on_hold INTEGER NOT NULL DEFAULT 0,
	on_hold_at TEXT,
	on_hold_by TEXT,
	comment TEXT,
	estimated_pickup_at TEXT,
	position INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Reallocation history, one row per entry
CREATE TABLE IF NOT EXISTS reallocations (
	chassis_no TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	customer TEXT,
	model TEXT,
	original_dealer TEXT,
	reallocated_to TEXT,
	dealer TEXT,
	regent_production TEXT,
	submit_time TEXT,
	date TEXT,
	signed_plans_received TEXT,
	issue_type TEXT,
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (chassis_no, entry_id)
);

-- Production schedule, in upstream order
CREATE TABLE IF NOT EXISTS schedule (
	position INTEGER PRIMARY KEY,
	chassis_no TEXT NOT NULL,
	regent_production TEXT,
	model TEXT,
	dealer TEXT,
	customer TEXT
);

CREATE INDEX IF NOT EXISTS idx_schedule_chassis ON schedule(chassis_no);

-- Stock sheet (dispatchingNote)
CREATE TABLE IF NOT EXISTS stock_sheet_notes (
	id TEXT PRIMARY KEY,
	chassis_no TEXT,
	update_text TEXT,
	year_notes TEXT,
	dispatched INTEGER NOT NULL DEFAULT 0,
	created_at TEXT,
	updated_at TEXT
);

-- Append-only mismatch reports (dispatchError)
CREATE TABLE IF NOT EXISTS dispatch_errors (
	id TEXT PRIMARY KEY,
	chassis_no TEXT NOT NULL,
	error_details TEXT,
	timestamp TEXT,
	status TEXT
);

-- Audit trail of operator writes
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at);
`

// InitSchema creates the schema on a fresh database, or migrates an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		var oldTableCount int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = 'dispatch'").Scan(&oldTableCount)
		if err != nil {
			return err
		}
		if oldTableCount > 0 {
			// tables predate version tracking
			return RunMigrations(db)
		}

		// Fresh install - create modern schema directly and mark every migration applied
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		if err := createVersionTable(db); err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to mark migration %d applied: %w", m.Version, err)
			}
		}
		return nil
	}

	return RunMigrations(db)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

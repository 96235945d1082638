package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_document_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_audit_logs",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_dispatch_position_and_hold_metadata",
		Up:      migrationV3,
	},
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the document collections as first shipped.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
			comment TEXT,
			estimated_pickup_at TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
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
		CREATE TABLE IF NOT EXISTS schedule (
			position INTEGER PRIMARY KEY,
			chassis_no TEXT NOT NULL,
			regent_production TEXT,
			model TEXT,
			dealer TEXT,
			customer TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_schedule_chassis ON schedule(chassis_no);
		CREATE TABLE IF NOT EXISTS stock_sheet_notes (
			id TEXT PRIMARY KEY,
			chassis_no TEXT,
			update_text TEXT,
			year_notes TEXT,
			dispatched INTEGER NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		);
		CREATE TABLE IF NOT EXISTS dispatch_errors (
			id TEXT PRIMARY KEY,
			chassis_no TEXT NOT NULL,
			error_details TEXT,
			timestamp TEXT,
			status TEXT
		);
	`)
	return err
}

// migrationV2 adds the audit trail.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	return err
}

// migrationV3 records store order of dispatch rows and who put a chassis on hold.
func migrationV3(tx *sql.Tx) error {
	for _, stmt := range []string{
		"ALTER TABLE dispatch ADD COLUMN on_hold_at TEXT",
		"ALTER TABLE dispatch ADD COLUMN on_hold_by TEXT",
		"ALTER TABLE dispatch ADD COLUMN position INTEGER NOT NULL DEFAULT 0",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures covering every
// dealer-check outcome, a flagged-stock reallocation and a finished chassis.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	dispatch := []struct {
		id, po, customer, model, sap, scheduled, code, status string
		days                                                  int
		onHold                                                bool
	}{
		{"SRC24001", "PO-1001", "J. Smith", "SRC-19E", "Coast RV", "Coast RV", "Z1", "OK", 4, false},
		{"SRC24002", "PO-1002", "Stock", "SRT-18F", "Coast RV", "Coast RV", "Z1", "OK", 11, false},
		{"SRC24003", "PO-1003", "R. Patel", "SRV-22", "Alpine Caravans", "Bush Campers", "Z2", "Mismatch", 19, false},
		{"SRC24004", "PO-1004", "Stock", "SRC-21", "Snowy Stock", "Snowy Stock", "Z3", "OK", 42, true},
	}
	for i, d := range dispatch {
		if _, err := database.Exec(
			`INSERT INTO dispatch (id, chassis_no, matched_po_no, customer, model, sap_data, scheduled_dealer,
				code, status_check, gr_to_gi_days, on_hold, position, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.id, d.id, d.po, d.customer, d.model, d.sap, d.scheduled, d.code, d.status, d.days, d.onHold, i, now,
		); err != nil {
			return fmt.Errorf("seed dispatch: %w", err)
		}
	}

	reallocations := []struct{ chassis, entry, customer, model, from, to, submit, date string }{
		{"SRC24002", "r-001", "Stock", "SRT-18F", "Coast RV", "Snowy Stock", "2024-01-12T03:10:00Z", ""},
		{"SRC24003", "r-002", "R. Patel", "SRV-22", "Bush Campers", "Alpine Caravans", "", "15/01/2024"},
		{"SRC24003", "r-003", "R. Patel", "SRV-22", "Alpine Caravans", "Bush Campers", "", "01/02/2024"},
		{"SRC23990", "r-004", "K. Lee", "SRC-19E", "Coast RV", "Bush Campers", "2023-11-02T00:00:00Z", ""},
	}
	for i, r := range reallocations {
		if _, err := database.Exec(
			`INSERT INTO reallocations (chassis_no, entry_id, customer, model, original_dealer, reallocated_to,
				submit_time, date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.chassis, r.entry, r.customer, r.model, r.from, r.to, r.submit, r.date, i,
		); err != nil {
			return fmt.Errorf("seed reallocations: %w", err)
		}
	}

	schedule := []struct{ chassis, stage, model, dealer, customer string }{
		{"SRC24001", "Finished", "SRC-19E", "Coast RV", "J. Smith"},
		{"SRC24002", "Chassis Welding", "SRT-18F", "Coast RV", "Stock"},
		{"SRC24003", "Wall Frame", "SRV-22", "Bush Campers", "R. Patel"},
		{"SRC23990", "Finished", "SRC-19E", "Coast RV", "K. Lee"},
	}
	for i, s := range schedule {
		if _, err := database.Exec(
			"INSERT INTO schedule (position, chassis_no, regent_production, model, dealer, customer) VALUES (?, ?, ?, ?, ?, ?)",
			i, s.chassis, s.stage, s.model, s.dealer, s.customer,
		); err != nil {
			return fmt.Errorf("seed schedule: %w", err)
		}
	}

	notes := []struct {
		chassis, update, yearNotes string
		dispatched                 bool
	}{
		{"SRC24002", "Awaiting canopy", "MY24", false},
		{"SRC24003", "Dealer confirmed", "MY24", true},
	}
	for _, n := range notes {
		if _, err := database.Exec(
			`INSERT INTO stock_sheet_notes (id, chassis_no, update_text, year_notes, dispatched, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.chassis, n.chassis, n.update, n.yearNotes, n.dispatched, now, now,
		); err != nil {
			return fmt.Errorf("seed stock sheet: %w", err)
		}
	}

	return nil
}

// Package sqlite contains SQLite implementations of the document store and repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dealerops/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db, now: time.Now}
}

// Create persists a new audit log entry.
func (r *AuditLogRepository) Create(ctx context.Context, log *secondary.AuditLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		nullString(log.ActorID),
		log.EntityType,
		log.EntityID,
		log.Action,
		nullString(log.FieldName),
		nullString(log.OldValue),
		nullString(log.NewValue),
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// List retrieves log entries matching the given filters, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := `SELECT id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at FROM audit_logs WHERE 1=1`
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}
	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}
	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}
	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*secondary.AuditLogRecord
	for rows.Next() {
		var (
			actorID   sql.NullString
			fieldName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			createdAt time.Time
		)

		record := &secondary.AuditLogRecord{}
		err := rows.Scan(&record.ID,
			&actorID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&fieldName,
			&oldValue,
			&newValue,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		record.ActorID = actorID.String
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		record.CreatedAt = createdAt.Format(time.RFC3339)

		logs = append(logs, record)
	}

	return logs, rows.Err()
}

// PruneOlderThan deletes log entries older than the specified number of days.
func (r *AuditLogRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -days)
	result, err := r.db.ExecContext(ctx, "DELETE FROM audit_logs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit logs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(count), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)

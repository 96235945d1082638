package secondary

import "context"

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// AuditLogRecord represents an audit log row as stored in persistence.
type AuditLogRecord struct {
	ID         string
	ActorID    string
	EntityType string // dispatch, stocksheet, dispatchError
	EntityID   string
	Action     string // create, update, delete
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// AuditLogFilters contains filter options for querying audit logs.
type AuditLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}

// AuditLogRepository defines the secondary port for audit log persistence.
type AuditLogRepository interface {
	// Create persists a new audit log row.
	Create(ctx context.Context, record *AuditLogRecord) error

	// List retrieves audit rows matching the filters, newest first.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)

	// PruneOlderThan deletes rows older than the given number of days and returns the count.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/dealerops/internal/ctxutil"
	"github.com/example/dealerops/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter using an AuditLogRepository.
type LogWriterAdapter struct {
	logRepo      secondary.AuditLogRepository
	defaultActor string
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
// defaultActor is recorded when the context carries no actor.
func NewLogWriterAdapter(logRepo secondary.AuditLogRepository, defaultActor string) *LogWriterAdapter {
	return &LogWriterAdapter{
		logRepo:      logRepo,
		defaultActor: defaultActor,
	}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs a delete operation for an entity.
func (w *LogWriterAdapter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "delete", "", "", "")
}

func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	return w.logRepo.Create(ctx, &secondary.AuditLogRecord{
		ID:         uuid.NewString(),
		ActorID:    ctxutil.ActorOr(ctx, w.defaultActor),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)

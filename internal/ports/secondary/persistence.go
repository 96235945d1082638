// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/dealerops/internal/models"
)

// Collection names in the document store.
const (
	CollectionDispatch      = "Dispatch"
	CollectionReallocation  = "reallocation"
	CollectionSchedule      = "schedule"
	CollectionStockSheet    = "dispatchingNote"
	CollectionDispatchError = "dispatchError"
)

// Unsubscribe tears down a live subscription. Safe to call more than once.
type Unsubscribe func()

// DocumentStore defines the secondary port for the realtime document store.
type DocumentStore interface {
	// FetchDispatch reads the whole dispatch collection.
	FetchDispatch(ctx context.Context) ([]models.DispatchRecord, error)

	// FetchReallocations reads the whole reallocation history.
	FetchReallocations(ctx context.Context) (models.ReallocationHistory, error)

	// FetchSchedule reads the production schedule in store order.
	FetchSchedule(ctx context.Context) ([]models.ScheduleEntry, error)

	// FetchStockSheet reads the stock-sheet notes.
	FetchStockSheet(ctx context.Context) ([]models.StockSheetNote, error)

	// SubscribeDispatch delivers the full dispatch collection on every change.
	SubscribeDispatch(fn func([]models.DispatchRecord)) (Unsubscribe, error)

	// SubscribeReallocations delivers the full reallocation history on every change.
	SubscribeReallocations(fn func(models.ReallocationHistory)) (Unsubscribe, error)

	// SubscribeStockSheet delivers the full stock sheet on every change.
	SubscribeStockSheet(fn func([]models.StockSheetNote)) (Unsubscribe, error)

	// PatchRecord updates some fields of one record. key must already be sanitised.
	// A nil value clears the field. Stock-sheet patches create the row when missing.
	PatchRecord(ctx context.Context, collection, key string, fields map[string]any) error

	// AppendRecord inserts a new record and returns its generated key.
	AppendRecord(ctx context.Context, collection string, value map[string]any) (string, error)

	// DeleteRecord removes one record.
	DeleteRecord(ctx context.Context, collection, key string) error
}

// Snapshot is a full copy of the four collections.
type Snapshot struct {
	Dispatch      []models.DispatchRecord
	Reallocations models.ReallocationHistory
	Schedule      []models.ScheduleEntry
	StockSheet    []models.StockSheetNote
}

// SnapshotWriter replaces store contents wholesale, standing in for the upstream sync.
type SnapshotWriter interface {
	// ReplaceAll swaps the four collections for the snapshot in one transaction.
	ReplaceAll(ctx context.Context, snap Snapshot) error
}

// ChangeFeed carries "collection changed" notifications between writers and subscribers.
type ChangeFeed interface {
	// Publish announces that a collection changed.
	Publish(ctx context.Context, collection string) error

	// Listen registers fn for every announced change.
	Listen(fn func(collection string)) (Unsubscribe, error)

	// Close releases the feed.
	Close() error
}

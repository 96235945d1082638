package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.DocumentStore = (*mockDocumentStore)(nil)
	_ secondary.Notifier      = (*mockNotifier)(nil)
	_ secondary.Exporter      = (*mockExporter)(nil)
	_ secondary.LogWriter     = (*mockLogWriter)(nil)
)

type patchCall struct {
	collection string
	key        string
	fields     map[string]any
}

type appendCall struct {
	collection string
	value      map[string]any
}

// mockDocumentStore implements secondary.DocumentStore for testing.
type mockDocumentStore struct {
	mu sync.Mutex

	dispatch []models.DispatchRecord
	history  models.ReallocationHistory
	schedule []models.ScheduleEntry
	notes    []models.StockSheetNote

	fetchDispatchErr error
	patchErr         error
	appendErr        error
	deleteErr        error

	patches []patchCall
	appends []appendCall
	deletes []string

	dispatchSubs []func([]models.DispatchRecord)
	reallocSubs  []func(models.ReallocationHistory)
	noteSubs     []func([]models.StockSheetNote)
	unsubscribed int
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{history: models.ReallocationHistory{}}
}

func (m *mockDocumentStore) FetchDispatch(ctx context.Context) ([]models.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchDispatchErr != nil {
		return nil, m.fetchDispatchErr
	}
	return append([]models.DispatchRecord(nil), m.dispatch...), nil
}

func (m *mockDocumentStore) FetchReallocations(ctx context.Context) (models.ReallocationHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history, nil
}

func (m *mockDocumentStore) FetchSchedule(ctx context.Context) ([]models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedule, nil
}

func (m *mockDocumentStore) FetchStockSheet(ctx context.Context) ([]models.StockSheetNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StockSheetNote(nil), m.notes...), nil
}

func (m *mockDocumentStore) SubscribeDispatch(fn func([]models.DispatchRecord)) (secondary.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchSubs = append(m.dispatchSubs, fn)
	return m.unsubscribe, nil
}

func (m *mockDocumentStore) SubscribeReallocations(fn func(models.ReallocationHistory)) (secondary.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reallocSubs = append(m.reallocSubs, fn)
	return m.unsubscribe, nil
}

func (m *mockDocumentStore) SubscribeStockSheet(fn func([]models.StockSheetNote)) (secondary.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noteSubs = append(m.noteSubs, fn)
	return m.unsubscribe, nil
}

func (m *mockDocumentStore) unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribed++
}

func (m *mockDocumentStore) PatchRecord(ctx context.Context, collection, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches = append(m.patches, patchCall{collection: collection, key: key, fields: fields})
	return m.patchErr
}

func (m *mockDocumentStore) AppendRecord(ctx context.Context, collection string, value map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return "", m.appendErr
	}
	m.appends = append(m.appends, appendCall{collection: collection, value: value})
	return "err-1", nil
}

func (m *mockDocumentStore) DeleteRecord(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, collection+"/"+key)
	return nil
}

// pushDispatch delivers a dispatch snapshot to every subscriber.
func (m *mockDocumentStore) pushDispatch(records []models.DispatchRecord) {
	m.mu.Lock()
	subs := append([]func([]models.DispatchRecord){}, m.dispatchSubs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(records)
	}
}

// pushNotes delivers a stock-sheet snapshot to every subscriber.
func (m *mockDocumentStore) pushNotes(notes []models.StockSheetNote) {
	m.mu.Lock()
	subs := append([]func([]models.StockSheetNote){}, m.noteSubs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(notes)
	}
}

func (m *mockDocumentStore) patchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.patches)
}

func (m *mockDocumentStore) lastPatch() patchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.patches) == 0 {
		return patchCall{}
	}
	return m.patches[len(m.patches)-1]
}

// mockNotifier implements secondary.Notifier for testing.
type mockNotifier struct {
	sendErr error
	reports []secondary.MismatchReport
}

func (m *mockNotifier) SendReportEmail(ctx context.Context, report secondary.MismatchReport) error {
	m.reports = append(m.reports, report)
	return m.sendErr
}

// mockExporter implements secondary.Exporter for testing.
type mockExporter struct {
	lastBase   string
	lastSheets []secondary.ExportSheet
	exportErr  error
}

func (m *mockExporter) Export(ctx context.Context, base string, sheets []secondary.ExportSheet) ([]string, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	m.lastBase = base
	m.lastSheets = sheets
	return []string{base + ".xlsx"}, nil
}

type logCall struct {
	action     string
	entityType string
	entityID   string
	fieldName  string
	oldValue   string
	newValue   string
}

// mockLogWriter implements secondary.LogWriter for testing.
type mockLogWriter struct {
	mu    sync.Mutex
	calls []logCall
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.record(logCall{action: "create", entityType: entityType, entityID: entityID})
	return nil
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.record(logCall{action: "update", entityType: entityType, entityID: entityID, fieldName: fieldName, oldValue: oldValue, newValue: newValue})
	return nil
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.record(logCall{action: "delete", entityType: entityType, entityID: entityID})
	return nil
}

func (m *mockLogWriter) record(c logCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// manualTimer is a task held by manualScheduler.
type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler implements Scheduler; tasks run only when fired.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
	delays []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

// fireAll runs every live task and returns how many ran.
func (s *manualScheduler) fireAll() int {
	s.mu.Lock()
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			live = append(live, t)
		}
	}
	s.mu.Unlock()

	for _, t := range live {
		t.f()
	}
	return len(live)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

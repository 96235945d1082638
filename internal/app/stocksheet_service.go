package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/core/dispatch"
	"github.com/example/dealerops/internal/core/stocksheet"
	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/ports/secondary"
)

// Stock-sheet store field names.
const (
	NoteFieldChassisNo  = "chassisNo"
	NoteFieldUpdate     = "update"
	NoteFieldYearNotes  = "yearNotes"
	NoteFieldDispatched = "dispatched"
	NoteFieldCreatedAt  = "createdAt"
	NoteFieldUpdatedAt  = "updatedAt"
)

// draft holds unsaved edits of one row. Nil fields are not being edited.
type draft struct {
	update    *string
	yearNotes *string
}

// StockSheetServiceImpl implements the StockSheetService interface.
type StockSheetServiceImpl struct {
	store     secondary.DocumentStore
	logWriter secondary.LogWriter
	logger    *logrus.Logger
	now       func() time.Time
	autosave  *debouncer

	mu       sync.RWMutex
	notes    []models.StockSheetNote
	schedule []models.ScheduleEntry
	history  models.ReallocationHistory
	drafts   map[string]draft
	loaded   bool
	closed   bool
	unsubs   []secondary.Unsubscribe
}

// NewStockSheetService creates a new StockSheetService with injected dependencies.
// Edits are saved once no further edit of the same row arrives within delay.
func NewStockSheetService(
	store secondary.DocumentStore,
	logWriter secondary.LogWriter,
	logger *logrus.Logger,
	sched Scheduler,
	delay time.Duration,
) *StockSheetServiceImpl {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &StockSheetServiceImpl{
		store:     store,
		logWriter: logWriter,
		logger:    logger,
		now:       time.Now,
		autosave:  newDebouncer(sched, delay),
		drafts:    make(map[string]draft),
	}
}

// Load fetches notes, schedule and reallocation history.
func (s *StockSheetServiceImpl) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	var (
		notes    []models.StockSheetNote
		schedule []models.ScheduleEntry
		history  models.ReallocationHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notes, err = s.store.FetchStockSheet(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = s.store.FetchSchedule(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.store.FetchReallocations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		config.LogError(s.logger, moduleName, "StockSheet.Load", "bulk load failed", nil, err)
		return fmt.Errorf("failed to load stock sheet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.notes = notes
	s.schedule = schedule
	s.history = history
	s.loaded = true
	return nil
}

// Subscribe starts live stock-sheet and reallocation updates.
func (s *StockSheetServiceImpl) Subscribe(ctx context.Context, onChange func()) error {
	if err := s.ready(); err != nil {
		return err
	}
	if onChange == nil {
		onChange = func() {}
	}

	unsubNotes, err := s.store.SubscribeStockSheet(func(notes []models.StockSheetNote) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.notes = notes
		s.mu.Unlock()
		onChange()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to stock sheet: %w", err)
	}

	unsubRealloc, err := s.store.SubscribeReallocations(func(h models.ReallocationHistory) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.history = h
		s.mu.Unlock()
		onChange()
	})
	if err != nil {
		unsubNotes()
		return fmt.Errorf("failed to subscribe to reallocations: %w", err)
	}

	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubNotes, unsubRealloc)
	s.mu.Unlock()
	return nil
}

// Rows returns the joined sheet. Counts are over all rows.
func (s *StockSheetServiceImpl) Rows(hideDispatched bool) (*primary.StockSheetView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	joined := stocksheet.Join(s.notes, s.schedule, s.history)
	drafts := make(map[string]draft, len(s.drafts))
	for k, v := range s.drafts {
		drafts[k] = v
	}
	s.mu.RUnlock()

	dispatched, total := stocksheet.Counts(joined)
	visible := stocksheet.Visible(joined, hideDispatched)

	view := &primary.StockSheetView{
		Rows:       make([]*primary.StockSheetRow, len(visible)),
		Dispatched: dispatched,
		Total:      total,
	}
	for i, r := range visible {
		row := &primary.StockSheetRow{
			ID:                r.ID,
			ChassisNo:         r.ChassisNo,
			Update:            r.Update,
			YearNotes:         r.YearNotes,
			Dispatched:        r.Dispatched,
			Model:             r.Model,
			ScheduledDealer:   r.ScheduledDealer,
			ReallocatedDealer: r.ReallocatedDealer,
			Customer:          r.Customer,
		}
		if d, ok := drafts[r.ID]; ok {
			if d.update != nil {
				row.Update = *d.update
			}
			if d.yearNotes != nil {
				row.YearNotes = *d.yearNotes
			}
			row.Dirty = true
		}
		view.Rows[i] = row
	}
	return view, nil
}

// AddChassis adds a row keyed by the sanitised chassis.
func (s *StockSheetServiceImpl) AddChassis(ctx context.Context, chassisNo string) error {
	if err := s.ready(); err != nil {
		return err
	}
	chassisNo = strings.TrimSpace(chassisNo)
	if chassisNo == "" {
		return fmt.Errorf("%w: chassis number is required", ErrInvalidInput)
	}

	key := dispatch.SanitizeKey(chassisNo)
	err := s.store.PatchRecord(ctx, secondary.CollectionStockSheet, key, map[string]any{
		NoteFieldChassisNo:  chassisNo,
		NoteFieldDispatched: false,
		NoteFieldCreatedAt:  s.stamp(),
	})
	if err != nil {
		config.LogError(s.logger, moduleName, "AddChassis", "stock sheet add failed", logrus.Fields{"chassis_no": chassisNo}, err)
		return fmt.Errorf("failed to add chassis %s: %w", chassisNo, err)
	}

	s.audit(s.logWriter.LogCreate(ctx, EntityStockSheet, key), key)
	return nil
}

// EditUpdate drafts the update text and schedules an autosave.
func (s *StockSheetServiceImpl) EditUpdate(ctx context.Context, rowID, text string) error {
	return s.edit(ctx, rowID, func(d *draft) { d.update = &text })
}

// EditYearNotes drafts the year notes and schedules an autosave.
func (s *StockSheetServiceImpl) EditYearNotes(ctx context.Context, rowID, text string) error {
	return s.edit(ctx, rowID, func(d *draft) { d.yearNotes = &text })
}

func (s *StockSheetServiceImpl) edit(ctx context.Context, rowID string, set func(*draft)) error {
	note, err := s.resolve(rowID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	d := s.drafts[note.Key]
	set(&d)
	s.drafts[note.Key] = d
	s.mu.Unlock()

	saveCtx := context.WithoutCancel(ctx)
	s.autosave.Schedule(note.Key, func() {
		if err := s.save(saveCtx, note.Key); err != nil {
			s.logger.WithError(err).WithField("row", note.Key).Warn("stock sheet autosave failed")
		}
	})
	return nil
}

// Save cancels any scheduled autosave and writes the row now.
func (s *StockSheetServiceImpl) Save(ctx context.Context, rowID string) error {
	note, err := s.resolve(rowID)
	if err != nil {
		return err
	}
	s.autosave.Cancel(note.Key)
	return s.save(ctx, note.Key)
}

// save writes drafts, falling back to persisted values for fields not being edited.
func (s *StockSheetServiceImpl) save(ctx context.Context, key string) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSessionClosed
	}
	note, ok := s.findLocked(key)
	d := s.drafts[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}

	update, yearNotes := note.Update, note.YearNotes
	if d.update != nil {
		update = *d.update
	}
	if d.yearNotes != nil {
		yearNotes = *d.yearNotes
	}

	chassisNo := note.Chassis()
	err := s.store.PatchRecord(ctx, secondary.CollectionStockSheet, dispatch.SanitizeKey(chassisNo), map[string]any{
		NoteFieldChassisNo: chassisNo,
		NoteFieldUpdate:    update,
		NoteFieldYearNotes: yearNotes,
		NoteFieldUpdatedAt: s.stamp(),
	})
	if err != nil {
		config.LogError(s.logger, moduleName, "StockSheet.save", "stock sheet save failed", logrus.Fields{"chassis_no": chassisNo}, err)
		return fmt.Errorf("failed to save %s: %w", chassisNo, err)
	}

	s.mu.Lock()
	if cur, ok := s.drafts[key]; ok && sameDraft(cur, d) {
		delete(s.drafts, key)
	}
	for i := range s.notes {
		if s.notes[i].Key == key {
			s.notes[i].Update = update
			s.notes[i].YearNotes = yearNotes
		}
	}
	s.mu.Unlock()

	if update != note.Update {
		s.audit(s.logWriter.LogUpdate(ctx, EntityStockSheet, key, NoteFieldUpdate, note.Update, update), key)
	}
	if yearNotes != note.YearNotes {
		s.audit(s.logWriter.LogUpdate(ctx, EntityStockSheet, key, NoteFieldYearNotes, note.YearNotes, yearNotes), key)
	}
	return nil
}

func sameDraft(a, b draft) bool {
	return equalPtr(a.update, b.update) && equalPtr(a.yearNotes, b.yearNotes)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ToggleDispatched flips the dispatched flag of a row.
func (s *StockSheetServiceImpl) ToggleDispatched(ctx context.Context, rowID string) error {
	note, err := s.resolve(rowID)
	if err != nil {
		return err
	}

	next := !note.Dispatched
	chassisNo := note.Chassis()
	err = s.store.PatchRecord(ctx, secondary.CollectionStockSheet, dispatch.SanitizeKey(chassisNo), map[string]any{
		NoteFieldChassisNo:  chassisNo,
		NoteFieldDispatched: next,
		NoteFieldUpdatedAt:  s.stamp(),
	})
	if err != nil {
		config.LogError(s.logger, moduleName, "ToggleDispatched", "stock sheet update failed", logrus.Fields{"chassis_no": chassisNo}, err)
		return fmt.Errorf("failed to update dispatched status of %s: %w", chassisNo, err)
	}

	s.audit(s.logWriter.LogUpdate(ctx, EntityStockSheet, note.Key, NoteFieldDispatched,
		strconv.FormatBool(note.Dispatched), strconv.FormatBool(next)), note.Key)
	return nil
}

// Delete cancels the row's autosave and removes it.
func (s *StockSheetServiceImpl) Delete(ctx context.Context, rowID string) error {
	note, err := s.resolve(rowID)
	if err != nil {
		return err
	}
	s.autosave.Cancel(note.Key)

	if err := s.store.DeleteRecord(ctx, secondary.CollectionStockSheet, dispatch.SanitizeKey(note.Chassis())); err != nil {
		config.LogError(s.logger, moduleName, "StockSheet.Delete", "stock sheet delete failed", logrus.Fields{"chassis_no": note.Chassis()}, err)
		return fmt.Errorf("failed to delete %s: %w", note.Chassis(), err)
	}

	s.mu.Lock()
	delete(s.drafts, note.Key)
	s.mu.Unlock()

	s.audit(s.logWriter.LogDelete(ctx, EntityStockSheet, note.Key), note.Key)
	return nil
}

// Close stops autosave timers and live updates. Unsaved drafts are dropped.
func (s *StockSheetServiceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	s.autosave.Stop()
	for _, unsub := range unsubs {
		unsub()
	}
	return nil
}

// AutosavePending reports whether an autosave is scheduled for the row.
func (s *StockSheetServiceImpl) AutosavePending(rowID string) bool {
	note, err := s.resolve(rowID)
	if err != nil {
		return false
	}
	return s.autosave.Pending(note.Key)
}

// Helper methods

func (s *StockSheetServiceImpl) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *StockSheetServiceImpl) audit(err error, key string) {
	if err != nil {
		s.logger.WithError(err).WithField("row", key).Warn("audit log write failed")
	}
}

func (s *StockSheetServiceImpl) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *StockSheetServiceImpl) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.loaded {
		return ErrNotLoaded
	}
	return nil
}

// resolve finds a row by store key, sanitised key or chassis number.
func (s *StockSheetServiceImpl) resolve(rowID string) (models.StockSheetNote, error) {
	if err := s.ready(); err != nil {
		return models.StockSheetNote{}, err
	}
	rowID = strings.TrimSpace(rowID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if note, ok := s.findLocked(rowID); ok {
		return note, nil
	}
	if note, ok := s.findLocked(dispatch.SanitizeKey(rowID)); ok {
		return note, nil
	}
	for _, n := range s.notes {
		if strings.EqualFold(n.Chassis(), rowID) {
			return n, nil
		}
	}
	return models.StockSheetNote{}, fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
}

func (s *StockSheetServiceImpl) findLocked(key string) (models.StockSheetNote, bool) {
	for _, n := range s.notes {
		if n.Key == key {
			return n, true
		}
	}
	return models.StockSheetNote{}, false
}

// Ensure StockSheetServiceImpl implements the interface
var _ primary.StockSheetService = (*StockSheetServiceImpl)(nil)

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
	"github.com/example/dealerops/internal/core/optimistic"
	"github.com/example/dealerops/internal/core/reallocation"
	"github.com/example/dealerops/internal/ctxutil"
	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/ports/secondary"
)

const moduleName = "app"

// Entity types recorded in the audit log.
const (
	EntityDispatch      = "dispatch"
	EntityStockSheet    = "stocksheet"
	EntityDispatchError = "dispatchError"
)

// Report constants
const (
	ReportErrorDetails = "Dealer check mismatch"
	ReportStatus       = "reported"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DashboardServiceImpl implements the DashboardService interface.
type DashboardServiceImpl struct {
	store     secondary.DocumentStore
	notifier  secondary.Notifier
	exporters map[string]secondary.Exporter
	logWriter secondary.LogWriter
	logger    *logrus.Logger
	now       func() time.Time

	overlay *optimistic.Store

	mu       sync.RWMutex
	records  []models.DispatchRecord
	history  models.ReallocationHistory
	schedule []models.ScheduleEntry
	loaded   bool
	closed   bool
	unsubs   []secondary.Unsubscribe
}

// NewDashboardService creates a new DashboardService with injected dependencies.
// notifier may be nil when email is not configured.
func NewDashboardService(
	store secondary.DocumentStore,
	notifier secondary.Notifier,
	exporters map[string]secondary.Exporter,
	logWriter secondary.LogWriter,
	logger *logrus.Logger,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		store:     store,
		notifier:  notifier,
		exporters: exporters,
		logWriter: logWriter,
		logger:    logger,
		now:       time.Now,
		overlay:   optimistic.NewStore(),
	}
}

// Load fetches dispatch, reallocation and schedule.
func (s *DashboardServiceImpl) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	var (
		records  []models.DispatchRecord
		history  models.ReallocationHistory
		schedule []models.ScheduleEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.FetchDispatch(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.store.FetchReallocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = s.store.FetchSchedule(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		config.LogError(s.logger, moduleName, "Load", "bulk load failed", nil, err)
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.records = records
	s.history = history
	s.schedule = schedule
	s.loaded = true
	s.overlay.Reconcile(records)

	s.logger.WithFields(logrus.Fields{
		"dispatch":      len(records),
		"reallocations": len(history),
		"schedule":      len(schedule),
	}).Debug("dashboard loaded")
	return nil
}

// Subscribe starts live dispatch and reallocation updates.
func (s *DashboardServiceImpl) Subscribe(ctx context.Context, onChange func()) error {
	if err := s.ready(); err != nil {
		return err
	}
	if onChange == nil {
		onChange = func() {}
	}

	unsubDispatch, err := s.store.SubscribeDispatch(func(records []models.DispatchRecord) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.records = records
		s.overlay.Reconcile(records)
		s.mu.Unlock()
		onChange()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to dispatch: %w", err)
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
		unsubDispatch()
		return fmt.Errorf("failed to subscribe to reallocations: %w", err)
	}

	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubDispatch, unsubRealloc)
	s.mu.Unlock()
	return nil
}

// View classifies, filters, searches and sorts the dispatch table.
func (s *DashboardServiceImpl) View(req primary.ViewRequest) (*primary.DashboardView, error) {
	query, err := parseViewRequest(req)
	if err != nil {
		return nil, err
	}

	records, history, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	view := dispatch.BuildView(dispatch.Classify(records, history), query, history)
	return &primary.DashboardView{
		Rows:   s.toRows(view.Rows),
		Active: s.toRows(view.Active),
		OnHold: s.toRows(view.OnHold),
	}, nil
}

// Stats returns the dashboard cards over the unfiltered dispatch table.
func (s *DashboardServiceImpl) Stats() (*primary.DashboardStats, error) {
	records, history, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	st := dispatch.ComputeStats(records, history)
	return &primary.DashboardStats{
		Total:            st.Total,
		StatusOK:         st.StatusOK,
		Invalid:          st.Invalid,
		FlaggedStock:     st.FlaggedStock,
		DispatchEligible: st.DispatchEligible,
		OnHold:           st.OnHold,
	}, nil
}

// Reallocations lists the latest reallocation per chassis.
func (s *DashboardServiceImpl) Reallocations(req primary.ReallocationQuery) ([]*primary.ReallocationRow, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var col reallocation.Column
	if req.SortColumn != "" {
		c, ok := reallocation.ParseColumn(req.SortColumn)
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort column %q", ErrInvalidInput, req.SortColumn)
		}
		col = c
	}

	s.mu.RLock()
	processed := reallocation.Process(s.history, s.schedule)
	s.mu.RUnlock()
	processed = reallocation.Sort(processed, col, req.Descending)

	term := strings.ToLower(strings.TrimSpace(req.Search))
	rows := make([]*primary.ReallocationRow, 0, len(processed))
	for _, p := range processed {
		if term != "" && !matchesReallocation(p, term) {
			continue
		}
		rows = append(rows, &primary.ReallocationRow{
			ChassisNo:           p.ChassisNo,
			EntryID:             p.EntryID,
			Customer:            p.Customer,
			Model:               p.Model,
			OriginalDealer:      p.OriginalDealer,
			ReallocatedTo:       p.ReallocatedTo,
			RegentProduction:    p.RegentProduction,
			IssueType:           p.IssueType,
			SignedPlansReceived: p.SignedPlansReceived,
			SubmitTime:          p.SubmitTime,
			Date:                p.Date,
		})
	}
	return rows, nil
}

func matchesReallocation(p reallocation.Processed, term string) bool {
	for _, v := range []string{p.ChassisNo, p.Customer, p.Model, p.OriginalDealer, p.ReallocatedTo, p.IssueType} {
		if v != "" && strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// ToggleHold flips the hold flag of a chassis, stamping when and by whom.
func (s *DashboardServiceImpl) ToggleHold(ctx context.Context, chassisNo string) error {
	current, err := s.lookup(chassisNo)
	if err != nil {
		return err
	}

	next := !current.OnHold
	at := s.now().UTC().Format(time.RFC3339)
	by := ctxutil.ActorOr(ctx, config.DefaultActor)
	return s.write(ctx, current, models.DispatchPatch{
		OnHold:   &next,
		OnHoldAt: &at,
		OnHoldBy: &by,
	})
}

// SaveComment writes the operator comment of a chassis.
func (s *DashboardServiceImpl) SaveComment(ctx context.Context, chassisNo, comment string) error {
	current, err := s.lookup(chassisNo)
	if err != nil {
		return err
	}
	return s.write(ctx, current, models.DispatchPatch{Comment: &comment})
}

// SavePickup schedules the estimated pickup of a chassis. An empty value clears it.
func (s *DashboardServiceImpl) SavePickup(ctx context.Context, chassisNo, pickupAt string) error {
	current, err := s.lookup(chassisNo)
	if err != nil {
		return err
	}

	var picked time.Time
	if strings.TrimSpace(pickupAt) != "" {
		picked, err = ParsePickup(pickupAt)
		if err != nil {
			return err
		}
	}

	now := s.now()
	result := dispatch.CanSchedulePickup(dispatch.PickupContext{
		ChassisNo: current.ChassisNo,
		PickupAt:  picked,
		Now:       now,
	})
	if !result.Allowed {
		s.overlay.SetError(current.ChassisNo, result.Reason)
		return fmt.Errorf("%w: %s", ErrPickupInPast, current.ChassisNo)
	}

	value := ""
	if !picked.IsZero() {
		value = picked.UTC().Format(time.RFC3339)
	}
	return s.write(ctx, current, models.DispatchPatch{EstimatedPickupAt: &value})
}

// pickupLayouts are accepted for operator-entered pickups, in local time unless zoned.
var pickupLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePickup parses an operator-entered pickup instant.
func ParsePickup(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range pickupLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: pick-up %q is not a date/time (use YYYY-MM-DDTHH:MM)", ErrInvalidInput, s)
}

// write applies the patch optimistically, issues it and rolls back its fields on failure.
func (s *DashboardServiceImpl) write(ctx context.Context, current models.DispatchRecord, patch models.DispatchPatch) error {
	id := current.ChassisNo

	result := dispatch.CanStartWrite(dispatch.WriteContext{
		ChassisNo: id,
		Saving:    s.overlay.Saving(id),
	})
	if err := result.Error(); err != nil {
		return err
	}

	s.overlay.Begin(id, patch)

	err := s.store.PatchRecord(ctx, secondary.CollectionDispatch, dispatch.SanitizeKey(id), patch.Values())
	if s.isClosed() {
		return err
	}
	if err != nil {
		s.overlay.Fail(id, patch.Fields(), err.Error())
		config.LogError(s.logger, moduleName, "write", "dispatch patch failed", logrus.Fields{"chassis_no": id}, err)
		return fmt.Errorf("failed to update %s: %w", id, err)
	}
	s.overlay.Succeed(id)

	for _, f := range patch.Fields() {
		old := fieldString(f, current)
		updated := fieldString(f, patch.Apply(current))
		if err := s.logWriter.LogUpdate(ctx, EntityDispatch, id, string(f), old, updated); err != nil {
			s.logger.WithError(err).WithField("chassis_no", id).Warn("audit log write failed")
		}
	}
	return nil
}

func fieldString(f models.DispatchField, r models.DispatchRecord) string {
	switch f {
	case models.FieldOnHold:
		return strconv.FormatBool(r.OnHold)
	case models.FieldOnHoldAt:
		return r.OnHoldAt
	case models.FieldOnHoldBy:
		return r.OnHoldBy
	case models.FieldComment:
		return r.Comment
	case models.FieldEstimatedPickupAt:
		return r.EstimatedPickupAt
	}
	return ""
}

// ReportMismatch emails a dealer-check report and appends it to the error log.
// The append is attempted whether or not the email went out.
func (s *DashboardServiceImpl) ReportMismatch(ctx context.Context, chassisNo string) (*primary.ReportResult, error) {
	current, err := s.lookup(chassisNo)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	var target string
	if latest, ok := reallocation.Latest(s.history.Entries(current.ChassisNo)); ok {
		target = latest.ReallocatedTo
	}
	s.mu.RUnlock()
	entry := dispatch.ClassifyOne(current, target)

	result := &primary.ReportResult{ChassisNo: current.ChassisNo}
	if s.notifier == nil {
		s.logger.WithField("chassis_no", current.ChassisNo).Warn("report email not configured")
	} else {
		err := s.notifier.SendReportEmail(ctx, secondary.MismatchReport{
			ChassisNo:       entry.ChassisNo,
			SAPData:         entry.SAPData,
			ScheduledDealer: entry.ScheduledDealer,
			ReallocatedTo:   entry.ReallocatedTo,
			Customer:        entry.Customer,
			Model:           entry.Model,
			StatusCheck:     entry.StatusCheck,
			DealerCheck:     entry.DealerCheck,
			GRDays:          entry.GRToGIDays,
		})
		if err != nil {
			s.logger.WithError(err).WithField("chassis_no", current.ChassisNo).Warn("report email failed")
		} else {
			result.EmailSent = true
		}
	}

	id, err := s.store.AppendRecord(ctx, secondary.CollectionDispatchError, map[string]any{
		"chassisNo":    current.ChassisNo,
		"errorDetails": ReportErrorDetails,
		"timestamp":    s.now().UTC().Format(time.RFC3339Nano),
		"status":       ReportStatus,
	})
	if err != nil {
		config.LogError(s.logger, moduleName, "ReportMismatch", "error log append failed", logrus.Fields{"chassis_no": current.ChassisNo}, err)
		return result, fmt.Errorf("failed to record report for %s: %w", current.ChassisNo, err)
	}
	result.ErrorID = id

	if err := s.logWriter.LogCreate(ctx, EntityDispatchError, id); err != nil {
		s.logger.WithError(err).WithField("chassis_no", current.ChassisNo).Warn("audit log write failed")
	}
	return result, nil
}

// RowState returns the pending/saving/error state of a chassis.
func (s *DashboardServiceImpl) RowState(chassisNo string) primary.RowState {
	return toRowState(s.overlay.State(strings.TrimSpace(chassisNo)))
}

func toRowState(st optimistic.RowState) primary.RowState {
	var fields []string
	for _, f := range st.Pending.Fields() {
		fields = append(fields, string(f))
	}
	return primary.RowState{PendingFields: fields, Saving: st.Saving, Error: st.Error}
}

// ExportHeaders are the column titles of an export, in order.
var ExportHeaders = []string{
	"Chassis No", "GR to GI Days", "Customer", "Model", "SAP Data", "Scheduled Dealer",
	"Matched PO No", "Code", "On Hold", "Status", "Dealer", "Reallocation", "Comment",
	"Estimated Pickup At",
}

// Export writes the filtered view as Active and On Hold tables.
func (s *DashboardServiceImpl) Export(ctx context.Context, req primary.ExportRequest) ([]string, error) {
	format := strings.ToLower(req.Format)
	if format == "" {
		format = FormatXLSX
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, req.Format)
	}

	view, err := s.View(req.View)
	if err != nil {
		return nil, err
	}

	base := req.Base
	if base == "" {
		base = "dispatch_" + s.now().Format("2006-01-02")
	}
	sheets := []secondary.ExportSheet{
		{Name: "Active", Headers: ExportHeaders, Rows: exportRows(view.Active)},
		{Name: "On Hold", Headers: ExportHeaders, Rows: exportRows(view.OnHold)},
	}

	files, err := exporter.Export(ctx, base, sheets)
	if err != nil {
		config.LogError(s.logger, moduleName, "Export", "export failed", logrus.Fields{"format": format}, err)
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	return files, nil
}

func exportRows(rows []*primary.DispatchRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		hold := "No"
		if r.OnHold {
			hold = "Yes"
		}
		out = append(out, []any{
			r.ChassisNo, r.GRToGIDays, r.Customer, r.Model, r.SAPData, r.ScheduledDealer,
			r.MatchedPONo, r.Code, hold, r.StatusCheck, r.DealerCheck, r.ReallocatedTo, r.Comment,
			r.EstimatedPickupAt,
		})
	}
	return out
}

// Close tears down live subscriptions.
func (s *DashboardServiceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	return nil
}

// Helper methods

func (s *DashboardServiceImpl) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *DashboardServiceImpl) ready() error {
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

// snapshot returns the dispatch records with pending edits applied, and the history.
func (s *DashboardServiceImpl) snapshot() ([]models.DispatchRecord, models.ReallocationHistory, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.DispatchRecord, len(s.records))
	for i, r := range s.records {
		records[i] = s.overlay.Apply(r)
	}
	return records, s.history, nil
}

// lookup finds a chassis in the overlaid dispatch table.
func (s *DashboardServiceImpl) lookup(chassisNo string) (models.DispatchRecord, error) {
	if err := s.ready(); err != nil {
		return models.DispatchRecord{}, err
	}
	chassisNo = strings.TrimSpace(chassisNo)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ChassisNo == chassisNo {
			return s.overlay.Apply(r), nil
		}
	}
	return models.DispatchRecord{}, fmt.Errorf("%w: %s", ErrUnknownChassis, chassisNo)
}

func (s *DashboardServiceImpl) toRows(entries []dispatch.Entry) []*primary.DispatchRow {
	rows := make([]*primary.DispatchRow, len(entries))
	for i, e := range entries {
		rows[i] = &primary.DispatchRow{
			ChassisNo:         e.ChassisNo,
			GRToGIDays:        e.GRToGIDays,
			DaysBand:          dispatch.DaysBand(e.GRToGIDays),
			Customer:          e.Customer,
			Model:             e.Model,
			SAPData:           e.SAPData,
			ScheduledDealer:   e.ScheduledDealer,
			MatchedPONo:       e.MatchedPONo,
			Code:              e.Code,
			StatusCheck:       e.StatusCheck,
			DealerCheck:       e.DealerCheck,
			ReallocatedTo:     e.ReallocatedTo,
			FlaggedStock:      e.FlaggedStock,
			DispatchEligible:  e.DispatchEligible,
			OnHold:            e.OnHold,
			OnHoldAt:          e.OnHoldAt,
			OnHoldBy:          e.OnHoldBy,
			Comment:           e.Comment,
			EstimatedPickupAt: e.EstimatedPickupAt,
			State:             toRowState(s.overlay.State(e.ChassisNo)),
		}
	}
	return rows
}

func parseViewRequest(req primary.ViewRequest) (dispatch.ViewQuery, error) {
	q := dispatch.ViewQuery{Category: dispatch.CategoryAll, Search: req.Search}

	if req.Category != "" {
		c, ok := dispatch.ParseCategory(req.Category)
		if !ok {
			return q, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
		}
		q.Category = c
	}
	if req.SortColumn != "" {
		col, ok := dispatch.ParseColumn(req.SortColumn)
		if !ok {
			return q, fmt.Errorf("%w: unknown sort column %q", ErrInvalidInput, req.SortColumn)
		}
		q.Sort = dispatch.SortState{Column: col, Descending: req.Descending}
	}
	return q, nil
}

// Ensure DashboardServiceImpl implements the interface
var _ primary.DashboardService = (*DashboardServiceImpl)(nil)

// Package optimistic holds the per-session overlay of dispatch edits that have been
// shown to the operator but not yet observed in the authoritative store.
//
// Each chassis is independent:
//
//	Idle    -> Begin    -> Pending (saving)
//	Pending -> Succeed  -> Pending (not saving), waits for a snapshot
//	Pending -> Fail     -> rolled-back fields removed, error recorded
//	Pending -> Reconcile-> fields equal to the snapshot removed; Idle when none remain
//
// Reconciliation is per field, so it gives the same result whether a write's success
// or the snapshot carrying it arrives first.
package optimistic

import (
	"sync"

	"github.com/example/dealerops/internal/models"
)

// DefaultErrorMessage is recorded when a failed write carries no message.
const DefaultErrorMessage = "Update failed"

// RowState is the observable state of one chassis.
type RowState struct {
	Pending models.DispatchPatch
	Saving  bool
	Error   string
}

// Store is the overlay for one dashboard session. The zero value is not usable; call NewStore.
type Store struct {
	mu      sync.Mutex
	overlay map[string]models.DispatchPatch
	saving  map[string]bool
	errors  map[string]string
}

// NewStore creates an empty overlay.
func NewStore() *Store {
	return &Store{
		overlay: make(map[string]models.DispatchPatch),
		saving:  make(map[string]bool),
		errors:  make(map[string]string),
	}
}

// Begin applies a patch ahead of its write, marks the chassis saving and clears its error.
func (s *Store) Begin(id string, patch models.DispatchPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay[id] = s.overlay[id].Merge(patch)
	s.saving[id] = true
	delete(s.errors, id)
}

// Succeed ends a write. The overlay stays until a snapshot reconciles it.
func (s *Store) Succeed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.saving, id)
}

// Fail rolls back only the given fields and records msg against the chassis.
func (s *Store) Fail(id string, fields []models.DispatchField, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg == "" {
		msg = DefaultErrorMessage
	}
	if patch, ok := s.overlay[id]; ok {
		s.setLocked(id, patch.Without(fields...))
	}
	delete(s.saving, id)
	s.errors[id] = msg
}

// SetError records a message without touching the overlay.
func (s *Store) SetError(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors[id] = msg
}

// Reconcile drops every pending field whose authoritative value now matches.
// Chassis missing from the snapshot keep their overlay.
func (s *Store) Reconcile(records []models.DispatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.overlay) == 0 {
		return
	}

	byID := make(map[string]models.DispatchRecord, len(records))
	for _, r := range records {
		byID[r.ChassisNo] = r
	}

	for id, patch := range s.overlay {
		base, ok := byID[id]
		if !ok {
			continue
		}
		var settled []models.DispatchField
		for _, f := range patch.Fields() {
			if patch.Matches(f, base) {
				settled = append(settled, f)
			}
		}
		if len(settled) > 0 {
			s.setLocked(id, patch.Without(settled...))
		}
	}
}

func (s *Store) setLocked(id string, patch models.DispatchPatch) {
	if patch.Empty() {
		delete(s.overlay, id)
		return
	}
	s.overlay[id] = patch
}

// Apply returns r with any pending fields for its chassis laid over it.
func (s *Store) Apply(r models.DispatchRecord) models.DispatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch, ok := s.overlay[r.ChassisNo]; ok {
		return patch.Apply(r)
	}
	return r
}

// Pending returns the pending patch for a chassis.
func (s *Store) Pending(id string) (models.DispatchPatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch, ok := s.overlay[id]
	return patch, ok
}

// Idle reports whether a chassis has no pending fields.
func (s *Store) Idle(id string) bool {
	_, pending := s.Pending(id)
	return !pending
}

// Saving reports whether a write is in flight for the chassis.
func (s *Store) Saving(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saving[id]
}

// Error returns the last write error for the chassis.
func (s *Store) Error(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.errors[id]
}

// State returns a snapshot of everything known about a chassis.
func (s *Store) State(id string) RowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return RowState{
		Pending: s.overlay[id],
		Saving:  s.saving[id],
		Error:   s.errors[id],
	}
}

// Len returns the number of chassis with pending fields.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.overlay)
}

package optimistic

import (
	"testing"

	"github.com/example/dealerops/internal/models"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func holdPatch() models.DispatchPatch {
	return models.DispatchPatch{
		OnHold:   boolPtr(true),
		OnHoldAt: strPtr("2024-05-01T10:00:00Z"),
		OnHoldBy: strPtr("webapp"),
	}
}

func TestBegin_AppliesImmediately(t *testing.T) {
	s := NewStore()
	s.SetError("C1", "old failure")

	s.Begin("C1", holdPatch())

	got := s.Apply(models.DispatchRecord{ChassisNo: "C1"})
	if !got.OnHold || got.OnHoldBy != "webapp" {
		t.Errorf("Apply() = %+v, want overlay applied", got)
	}
	if !s.Saving("C1") {
		t.Error("expected saving=true after Begin")
	}
	if s.Error("C1") != "" {
		t.Errorf("Begin must clear prior error, got %q", s.Error("C1"))
	}
	if other := s.Apply(models.DispatchRecord{ChassisNo: "C2"}); other.OnHold {
		t.Error("overlay must not leak to other chassis")
	}
}

func TestReconcile_ClearsWhenSnapshotMatches(t *testing.T) {
	s := NewStore()
	s.Begin("C1", holdPatch())
	s.Succeed("C1")

	s.Reconcile([]models.DispatchRecord{{
		ChassisNo: "C1",
		OnHold:    true,
		OnHoldAt:  "2024-05-01T10:00:00Z",
		OnHoldBy:  "webapp",
	}})

	if !s.Idle("C1") {
		p, _ := s.Pending("C1")
		t.Errorf("expected Idle, still pending %v", p.Fields())
	}
}

func TestReconcile_BeforeSuccessCallback(t *testing.T) {
	s := NewStore()
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("hello")})

	s.Reconcile([]models.DispatchRecord{{ChassisNo: "C1", Comment: "hello"}})
	s.Succeed("C1")

	if !s.Idle("C1") {
		t.Error("expected Idle regardless of arrival order")
	}
	if s.Saving("C1") {
		t.Error("expected saving=false after Succeed")
	}
}

func TestReconcile_FieldLevel(t *testing.T) {
	s := NewStore()
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("new comment")})
	s.Begin("C1", models.DispatchPatch{EstimatedPickupAt: strPtr("2030-01-01T09:00:00Z")})

	// Only the comment write has landed.
	s.Reconcile([]models.DispatchRecord{{ChassisNo: "C1", Comment: "new comment"}})

	p, ok := s.Pending("C1")
	if !ok {
		t.Fatal("expected pickup to remain pending")
	}
	if p.Comment != nil {
		t.Error("comment should have been reconciled")
	}
	if p.EstimatedPickupAt == nil {
		t.Error("pickup should still be pending")
	}

	s.Reconcile([]models.DispatchRecord{{ChassisNo: "C1", Comment: "new comment", EstimatedPickupAt: "2030-01-01T09:00:00Z"}})
	if !s.Idle("C1") {
		t.Error("expected Idle once every field matched")
	}
}

func TestReconcile_IgnoresStaleAndMissing(t *testing.T) {
	s := NewStore()
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("new")})

	s.Reconcile([]models.DispatchRecord{{ChassisNo: "C1", Comment: "old"}})
	if s.Idle("C1") {
		t.Error("stale snapshot must not clear the overlay")
	}

	s.Reconcile(nil)
	if s.Idle("C1") {
		t.Error("chassis missing from snapshot must keep its overlay")
	}

	if got := s.Apply(models.DispatchRecord{ChassisNo: "C1", Comment: "old"}); got.Comment != "new" {
		t.Errorf("Apply() comment = %q, want overlay value", got.Comment)
	}
}

func TestFail_RollsBackOnlyFailedFields(t *testing.T) {
	s := NewStore()
	s.Begin("C1", holdPatch())
	s.Succeed("C1")
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("note")})

	s.Fail("C1", []models.DispatchField{models.FieldComment}, "permission denied")

	p, ok := s.Pending("C1")
	if !ok {
		t.Fatal("hold fields should remain pending")
	}
	if p.Comment != nil {
		t.Error("failed comment must be rolled back")
	}
	if p.OnHold == nil || p.OnHoldAt == nil || p.OnHoldBy == nil {
		t.Errorf("hold fields must survive, got %v", p.Fields())
	}
	if s.Saving("C1") {
		t.Error("expected saving=false after Fail")
	}
	if s.Error("C1") != "permission denied" {
		t.Errorf("Error = %q", s.Error("C1"))
	}
}

func TestFail_LastFieldReturnsToIdle(t *testing.T) {
	s := NewStore()
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("x")})

	s.Fail("C1", []models.DispatchField{models.FieldComment}, "")

	if !s.Idle("C1") {
		t.Error("expected Idle after rolling back the only field")
	}
	if s.Error("C1") != DefaultErrorMessage {
		t.Errorf("Error = %q, want default message", s.Error("C1"))
	}
}

func TestStore_IndependentChassis(t *testing.T) {
	s := NewStore()
	s.Begin("C1", models.DispatchPatch{Comment: strPtr("one")})
	s.Begin("C2", models.DispatchPatch{Comment: strPtr("two")})

	s.Fail("C1", []models.DispatchField{models.FieldComment}, "boom")

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	state := s.State("C2")
	if !state.Saving || state.Error != "" || state.Pending.Comment == nil {
		t.Errorf("C2 state = %+v, want untouched pending write", state)
	}
}

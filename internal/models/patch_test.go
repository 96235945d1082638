package models

import "testing"

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestDispatchPatch_Fields(t *testing.T) {
	p := DispatchPatch{OnHold: boolPtr(true), Comment: strPtr("x")}
	fields := p.Fields()
	if len(fields) != 2 || fields[0] != FieldOnHold || fields[1] != FieldComment {
		t.Errorf("Fields() = %v, want [OnHold Comment]", fields)
	}
	if p.Empty() {
		t.Error("expected non-empty patch")
	}
	if !(DispatchPatch{}).Empty() {
		t.Error("expected zero patch to be empty")
	}
}

func TestDispatchPatch_MergeAndWithout(t *testing.T) {
	p := DispatchPatch{Comment: strPtr("first")}
	p = p.Merge(DispatchPatch{Comment: strPtr("second"), OnHold: boolPtr(false)})

	if *p.Comment != "second" {
		t.Errorf("Comment = %q, want %q", *p.Comment, "second")
	}
	if p.OnHold == nil || *p.OnHold {
		t.Error("expected OnHold=false to be merged")
	}

	p = p.Without(FieldComment)
	if p.Comment != nil {
		t.Error("expected Comment removed")
	}
	if p.OnHold == nil {
		t.Error("expected OnHold kept")
	}
}

func TestDispatchPatch_ApplyAndMatches(t *testing.T) {
	rec := DispatchRecord{ChassisNo: "C1", Comment: "old"}
	p := DispatchPatch{Comment: strPtr("new"), OnHold: boolPtr(true)}

	got := p.Apply(rec)
	if got.Comment != "new" || !got.OnHold {
		t.Errorf("Apply() = %+v", got)
	}
	if rec.Comment != "old" {
		t.Error("Apply must not modify its argument")
	}
	if p.Matches(FieldComment, rec) {
		t.Error("Comment should not match the old record")
	}
	if !p.Matches(FieldComment, got) {
		t.Error("Comment should match the patched record")
	}
	if p.Matches(FieldOnHoldBy, got) {
		t.Error("unset fields never match")
	}
}

func TestDispatchPatch_Values(t *testing.T) {
	p := DispatchPatch{EstimatedPickupAt: strPtr(""), OnHold: boolPtr(true)}
	values := p.Values()

	v, ok := values["EstimatedPickupAt"]
	if !ok || v != nil {
		t.Errorf("EstimatedPickupAt = %v (present %v), want nil", v, ok)
	}
	if values["OnHold"] != true {
		t.Errorf("OnHold = %v, want true", values["OnHold"])
	}
	if _, ok := values["Comment"]; ok {
		t.Error("unset fields must not be written")
	}
}

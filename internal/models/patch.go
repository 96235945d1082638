package models

// DispatchField names an operator-editable dispatch field.
// The string values are the field names used by the document store.
type DispatchField string

const (
	FieldOnHold            DispatchField = "OnHold"
	FieldOnHoldAt          DispatchField = "OnHoldAt"
	FieldOnHoldBy          DispatchField = "OnHoldBy"
	FieldComment           DispatchField = "Comment"
	FieldEstimatedPickupAt DispatchField = "EstimatedPickupAt"
)

// DispatchPatch is a partial update of the editable dispatch fields.
// Nil pointers are fields not touched by the patch.
type DispatchPatch struct {
	OnHold            *bool
	OnHoldAt          *string
	OnHoldBy          *string
	Comment           *string
	EstimatedPickupAt *string
}

// Fields lists the fields set in the patch.
func (p DispatchPatch) Fields() []DispatchField {
	var fields []DispatchField
	if p.OnHold != nil {
		fields = append(fields, FieldOnHold)
	}
	if p.OnHoldAt != nil {
		fields = append(fields, FieldOnHoldAt)
	}
	if p.OnHoldBy != nil {
		fields = append(fields, FieldOnHoldBy)
	}
	if p.Comment != nil {
		fields = append(fields, FieldComment)
	}
	if p.EstimatedPickupAt != nil {
		fields = append(fields, FieldEstimatedPickupAt)
	}
	return fields
}

// Empty reports whether no field is set.
func (p DispatchPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Merge overlays other on top of p.
func (p DispatchPatch) Merge(other DispatchPatch) DispatchPatch {
	if other.OnHold != nil {
		p.OnHold = other.OnHold
	}
	if other.OnHoldAt != nil {
		p.OnHoldAt = other.OnHoldAt
	}
	if other.OnHoldBy != nil {
		p.OnHoldBy = other.OnHoldBy
	}
	if other.Comment != nil {
		p.Comment = other.Comment
	}
	if other.EstimatedPickupAt != nil {
		p.EstimatedPickupAt = other.EstimatedPickupAt
	}
	return p
}

// Without returns a copy of p with the given fields cleared.
func (p DispatchPatch) Without(fields ...DispatchField) DispatchPatch {
	for _, f := range fields {
		switch f {
		case FieldOnHold:
			p.OnHold = nil
		case FieldOnHoldAt:
			p.OnHoldAt = nil
		case FieldOnHoldBy:
			p.OnHoldBy = nil
		case FieldComment:
			p.Comment = nil
		case FieldEstimatedPickupAt:
			p.EstimatedPickupAt = nil
		}
	}
	return p
}

// Apply returns r with the patch applied.
func (p DispatchPatch) Apply(r DispatchRecord) DispatchRecord {
	if p.OnHold != nil {
		r.OnHold = *p.OnHold
	}
	if p.OnHoldAt != nil {
		r.OnHoldAt = *p.OnHoldAt
	}
	if p.OnHoldBy != nil {
		r.OnHoldBy = *p.OnHoldBy
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	if p.EstimatedPickupAt != nil {
		r.EstimatedPickupAt = *p.EstimatedPickupAt
	}
	return r
}

// Matches reports whether field f of the patch equals the same field of r.
// Fields not set in the patch never match.
func (p DispatchPatch) Matches(f DispatchField, r DispatchRecord) bool {
	switch f {
	case FieldOnHold:
		return p.OnHold != nil && *p.OnHold == r.OnHold
	case FieldOnHoldAt:
		return p.OnHoldAt != nil && *p.OnHoldAt == r.OnHoldAt
	case FieldOnHoldBy:
		return p.OnHoldBy != nil && *p.OnHoldBy == r.OnHoldBy
	case FieldComment:
		return p.Comment != nil && *p.Comment == r.Comment
	case FieldEstimatedPickupAt:
		return p.EstimatedPickupAt != nil && *p.EstimatedPickupAt == r.EstimatedPickupAt
	}
	return false
}

// Values returns the patch as a store field map.
// An empty EstimatedPickupAt is written as nil to clear it.
func (p DispatchPatch) Values() map[string]any {
	values := make(map[string]any)
	if p.OnHold != nil {
		values[string(FieldOnHold)] = *p.OnHold
	}
	if p.OnHoldAt != nil {
		values[string(FieldOnHoldAt)] = *p.OnHoldAt
	}
	if p.OnHoldBy != nil {
		values[string(FieldOnHoldBy)] = *p.OnHoldBy
	}
	if p.Comment != nil {
		values[string(FieldComment)] = *p.Comment
	}
	if p.EstimatedPickupAt != nil {
		if *p.EstimatedPickupAt == "" {
			values[string(FieldEstimatedPickupAt)] = nil
		} else {
			values[string(FieldEstimatedPickupAt)] = *p.EstimatedPickupAt
		}
	}
	return values
}

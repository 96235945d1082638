// Package snapshot decodes raw realtime-store exports into typed records.
//
// Upstream documents are loosely keyed: the same value may appear under
// several field names depending on which tool wrote it. Each lookup below
// lists its candidate names in priority order; the first non-empty one wins.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/example/dealerops/internal/models"
	"github.com/example/dealerops/internal/ports/secondary"
)

// Field priority lists.
var (
	DispatchChassisFields = []string{"Chassis No", "chassisNo", "Chassis"}

	ScheduleChassisFields    = []string{"Chassis", "Chassis No", "chassis", "chassisNo", "chassis_number"}
	ScheduleProductionFields = []string{"Regent Production", "regentProduction"}
	ScheduleModelFields      = []string{"Model", "model"}
	ScheduleDealerFields     = []string{"Dealer", "dealer", "Scheduled Dealer"}
	ScheduleCustomerFields   = []string{"Customer", "customer", "Customer Name"}
)

type document map[string]any

// Decode reads an export holding any of the Dispatch, reallocation, schedule
// and dispatchingNote nodes. StockSheet stays nil when the export has no
// dispatchingNote node.
func Decode(r io.Reader) (secondary.Snapshot, error) {
	var root map[string]json.RawMessage
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return secondary.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	var snap secondary.Snapshot
	var err error
	if raw, ok := root[secondary.CollectionDispatch]; ok {
		if snap.Dispatch, err = decodeDispatch(raw); err != nil {
			return secondary.Snapshot{}, err
		}
	}
	if raw, ok := root[secondary.CollectionReallocation]; ok {
		if snap.Reallocations, err = decodeReallocations(raw); err != nil {
			return secondary.Snapshot{}, err
		}
	}
	if raw, ok := root[secondary.CollectionSchedule]; ok {
		if snap.Schedule, err = decodeSchedule(raw); err != nil {
			return secondary.Snapshot{}, err
		}
	}
	if raw, ok := root[secondary.CollectionStockSheet]; ok {
		if snap.StockSheet, err = decodeNotes(raw); err != nil {
			return secondary.Snapshot{}, err
		}
	}
	return snap, nil
}

// DecodeFile decodes the export at path.
func DecodeFile(path string) (secondary.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return secondary.Snapshot{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// decodeDispatch returns records in key order, which is the store's child order.
func decodeDispatch(raw json.RawMessage) ([]models.DispatchRecord, error) {
	docs, err := decodeObject(raw, secondary.CollectionDispatch)
	if err != nil {
		return nil, err
	}

	records := make([]models.DispatchRecord, 0, len(docs))
	for _, key := range sortedKeys(docs) {
		d := docs[key]
		if d == nil {
			continue
		}
		chassis := d.str(DispatchChassisFields...)
		if chassis == "" {
			chassis = key
		}
		records = append(records, models.DispatchRecord{
			ChassisNo:         chassis,
			MatchedPONo:       d.str("Matched PO No"),
			GRToGIDays:        d.num("GR to GI Days"),
			DaysFromGR:        d.num("Days From GR"),
			GRDate:            d.str("GR Date (Perth)", "GR Date"),
			PGIDate:           d.str("PGI Date (3120)", "PGI Date"),
			Customer:          d.str("Customer"),
			Model:             d.str("Model"),
			SAPData:           d.str("SAP Data"),
			ScheduledDealer:   d.str("Scheduled Dealer"),
			Code:              d.str("Code"),
			StatusCheck:       d.str("Statuscheck", "StatusCheck"),
			OnHold:            d.flag("OnHold"),
			OnHoldAt:          d.str("OnHoldAt"),
			OnHoldBy:          d.str("OnHoldBy"),
			Comment:           d.str("Comment"),
			EstimatedPickupAt: d.str("EstimatedPickupAt"),
		})
	}
	return records, nil
}

// decodeReallocations returns entries per chassis in entry-id order.
func decodeReallocations(raw json.RawMessage) (models.ReallocationHistory, error) {
	var byChassis map[string]map[string]document
	if err := json.Unmarshal(raw, &byChassis); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", secondary.CollectionReallocation, err)
	}

	history := make(models.ReallocationHistory, len(byChassis))
	for chassis, entries := range byChassis {
		for _, id := range sortedKeys(entries) {
			e := entries[id]
			if e == nil {
				continue
			}
			history[chassis] = append(history[chassis], models.ReallocationEntry{
				EntryID:             id,
				Customer:            e.str("customer"),
				Model:               e.str("model"),
				OriginalDealer:      e.str("originalDealer"),
				ReallocatedTo:       e.str("reallocatedTo"),
				Dealer:              e.str("dealer"),
				RegentProduction:    e.str("regentProduction"),
				SubmitTime:          e.str("submitTime"),
				Date:                e.str("date"),
				SignedPlansReceived: e.str("signedPlansReceived"),
				IssueType:           e.issueType(),
			})
		}
	}
	return history, nil
}

// decodeSchedule accepts a JSON array or, for sparse arrays, an object keyed by index.
func decodeSchedule(raw json.RawMessage) ([]models.ScheduleEntry, error) {
	var items []document
	if err := json.Unmarshal(raw, &items); err != nil {
		var byIndex map[string]document
		if err2 := json.Unmarshal(raw, &byIndex); err2 != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", secondary.CollectionSchedule, err)
		}
		items = indexOrder(byIndex)
	}

	entries := make([]models.ScheduleEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		chassis := strings.TrimSpace(item.str(ScheduleChassisFields...))
		if chassis == "" {
			continue
		}
		entries = append(entries, models.ScheduleEntry{
			ChassisNo:        chassis,
			RegentProduction: item.str(ScheduleProductionFields...),
			Model:            item.str(ScheduleModelFields...),
			Dealer:           item.str(ScheduleDealerFields...),
			Customer:         item.str(ScheduleCustomerFields...),
		})
	}
	return entries, nil
}

func decodeNotes(raw json.RawMessage) ([]models.StockSheetNote, error) {
	docs, err := decodeObject(raw, secondary.CollectionStockSheet)
	if err != nil {
		return nil, err
	}

	notes := make([]models.StockSheetNote, 0, len(docs))
	for _, key := range sortedKeys(docs) {
		d := docs[key]
		if d == nil {
			continue
		}
		notes = append(notes, models.StockSheetNote{
			Key:        key,
			ChassisNo:  d.str("chassisNo"),
			Update:     d.str("update"),
			YearNotes:  d.str("yearNotes"),
			Dispatched: d.flag("dispatched"),
			CreatedAt:  d.str("createdAt"),
			UpdatedAt:  d.str("updatedAt"),
		})
	}
	return notes, nil
}

func decodeObject(raw json.RawMessage, name string) (map[string]document, error) {
	var docs map[string]document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return docs, nil
}

// str returns the first non-empty value among keys, rendered as text.
func (d document) str(keys ...string) string {
	for _, k := range keys {
		switch v := d[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// num returns the first numeric value among keys; text is parsed, failures give 0.
func (d document) num(keys ...string) int {
	for _, k := range keys {
		switch v := d[k].(type) {
		case float64:
			return int(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return int(f)
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return int(f)
			}
		}
	}
	return 0
}

// flag accepts booleans and the strings "true"/"yes".
func (d document) flag(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes"
	}
	return false
}

func (d document) issueType() string {
	if issue, ok := d["issue"].(map[string]any); ok {
		if t, ok := issue["type"].(string); ok {
			return t
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// indexOrder orders an index-keyed object numerically; non-numeric keys go last.
func indexOrder(byIndex map[string]document) []document {
	keys := sortedKeys(byIndex)
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		default:
			return false
		}
	})
	items := make([]document, 0, len(keys))
	for _, k := range keys {
		items = append(items, byIndex[k])
	}
	return items
}

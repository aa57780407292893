// Package diff implements the identity & diff engine: given the previously
// persisted device state and a freshly fetched snapshot, it computes per-IMEI
// field diffs and classifies each device's transition. The computation is
// pure and in-memory; callers apply the resulting changes.
package diff

import (
	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/models"
)

// FieldChange is one before/after pair on a single device
type FieldChange struct {
	Field  string `json:"field"` // status, grade, lockStatus, location
	Before string `json:"before"`
	After  string `json:"after"`
}

// Change is the classified transition for one IMEI in one pass. A device
// with several simultaneous field changes produces exactly one Change with
// multiple Fields entries, never multiple Changes.
type Change struct {
	IMEI   string
	Type   models.MovementType
	Fields []FieldChange
	Before *models.InventoryItem // nil for added
	After  models.InventoryItem
}

// Stats counts the outcomes that produce no Change record
type Stats struct {
	Unchanged   int
	ParseErrors int
	Duplicates  int
}

// Result is the full output of one diff pass
type Result struct {
	Changes []Change
	// MissingFromIncoming lists IMEIs present in previous state but absent
	// from the snapshot. The orchestrator resolves them against the outbound
	// list; unresolved IMEIs are counted, never auto-removed.
	MissingFromIncoming []string
	Stats               Stats
}

// Compute diffs the incoming snapshot against previous persisted state.
// Incoming is a slice so duplicate IMEIs inside one snapshot are observable;
// on duplicates the last occurrence wins and the stat is bumped. Malformed
// IMEIs are excluded and counted as parse errors.
func Compute(previous map[string]models.InventoryItem, incoming []models.InventoryItem) Result {
	var res Result

	// Dedupe pass, last-seen-wins, preserving first-seen order for output
	// stability across runs.
	latest := make(map[string]models.InventoryItem, len(incoming))
	order := make([]string, 0, len(incoming))
	for _, item := range incoming {
		id := imei.Normalize(item.IMEI)
		if !imei.Valid(id) {
			res.Stats.ParseErrors++
			continue
		}
		item.IMEI = id
		if _, seen := latest[id]; seen {
			res.Stats.Duplicates++
		} else {
			order = append(order, id)
		}
		latest[id] = item
	}

	for _, id := range order {
		item := latest[id]
		prev, exists := previous[id]
		if !exists {
			res.Changes = append(res.Changes, Change{
				IMEI:  id,
				Type:  models.MovementAdded,
				After: item,
			})
			continue
		}

		change := classify(prev, item)
		if change == nil {
			res.Stats.Unchanged++
			continue
		}
		res.Changes = append(res.Changes, *change)
	}

	for id := range previous {
		if _, ok := latest[id]; !ok {
			res.MissingFromIncoming = append(res.MissingFromIncoming, id)
		}
	}

	return res
}

// classify compares one device's previous and incoming state. Returns nil
// when nothing tracked changed. Movement type precedence when several fields
// moved at once: status > grade > location; a lockStatus change alone rides
// under status_changed. Either way all changed fields land on the one record.
func classify(prev, next models.InventoryItem) *Change {
	var fields []FieldChange
	var mtype models.MovementType

	if string(prev.Status) != string(next.Status) {
		fields = append(fields, FieldChange{Field: "status", Before: string(prev.Status), After: string(next.Status)})
		mtype = models.MovementStatusChanged
	}
	if prev.Grade != next.Grade {
		fields = append(fields, FieldChange{Field: "grade", Before: prev.Grade, After: next.Grade})
		if mtype == "" {
			mtype = models.MovementGradeChanged
		}
	}
	if prev.LockStatus != next.LockStatus {
		// Lock changes are recorded within the same movement record, not as
		// a separate movement type, to avoid duplicate ledger noise.
		fields = append(fields, FieldChange{Field: "lockStatus", Before: prev.LockStatus, After: next.LockStatus})
		if mtype == "" {
			mtype = models.MovementStatusChanged
		}
	}
	if prev.Location != next.Location {
		fields = append(fields, FieldChange{Field: "location", Before: prev.Location, After: next.Location})
		if mtype == "" {
			mtype = models.MovementTransferred
		}
	}

	if len(fields) == 0 {
		return nil
	}

	prevCopy := prev
	return &Change{
		IMEI:   next.IMEI,
		Type:   mtype,
		Fields: fields,
		Before: &prevCopy,
		After:  next,
	}
}

// Package ledger is the append-only movement log. It turns classified diff
// changes into immutable Movement records and serves the filtered,
// paginated, chronological queries behind the dashboard views.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nexfone/invtrack/internal/diff"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
	"gorm.io/datatypes"
)

const (
	// DefaultLimit applies when a query passes limit <= 0
	DefaultLimit = 50
	// MaxLimit caps a single page
	MaxLimit = 500
)

// Ledger wraps the store's movement tables with construction and
// pagination policy. Entries are created exactly once per detected state
// transition per sync run and never touched again.
type Ledger struct {
	store store.Store
}

// New creates a Ledger over the given store
func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// snapshotBlob is the audit payload stored on every movement
type snapshotBlob struct {
	Before *models.InventoryItem `json:"before,omitempty"`
	After  *models.InventoryItem `json:"after,omitempty"`
}

// FromChange builds the Movement record for one classified diff change.
// All changed fields land on the single record; the full before/after
// states are embedded as the audit snapshot.
func FromChange(c diff.Change, source models.MovementSource, performedBy *string, at time.Time) (*models.Movement, error) {
	m := &models.Movement{
		MovementType: c.Type,
		IMEI:         c.IMEI,
		Source:       source,
		PerformedBy:  performedBy,
		PerformedAt:  at,
	}

	for _, f := range c.Fields {
		switch f.Field {
		case "status":
			m.FromStatus, m.ToStatus = f.Before, f.After
		case "grade":
			m.FromGrade, m.ToGrade = f.Before, f.After
		case "lockStatus":
			m.FromLock, m.ToLock = f.Before, f.After
		case "location":
			m.FromLocation, m.ToLocation = f.Before, f.After
		}
	}

	after := c.After
	blob, err := json.Marshal(snapshotBlob{Before: c.Before, After: &after})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal movement snapshot: %w", err)
	}
	m.Snapshot = datatypes.JSON(blob)

	return m, nil
}

// Append writes one movement. Storage errors propagate to the caller and
// are fatal to the running sync.
func (l *Ledger) Append(ctx context.Context, m *models.Movement) (string, error) {
	if m.PerformedAt.IsZero() {
		m.PerformedAt = time.Now().UTC()
	}
	if err := l.store.AppendMovement(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// Query returns one page of movements ordered performedAt descending with
// a stable tie-break on insertion sequence. Pagination reflects the ledger
// at query time; callers needing a frozen view pass an explicit upper
// bound in the filter.
func (l *Ledger) Query(ctx context.Context, f store.MovementFilter, limit, offset int) (*store.MovementPage, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return l.store.QueryMovements(ctx, f, limit, offset)
}

// History returns the full movement trail for one IMEI, newest first.
// It pages through the store until the trail is exhausted, so devices
// with more movements than one page still get their complete history.
func (l *Ledger) History(ctx context.Context, imei string) ([]models.Movement, error) {
	var all []models.Movement
	offset := 0
	for {
		pg, err := l.store.QueryMovements(ctx, store.MovementFilter{IMEI: imei}, MaxLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, pg.Movements...)
		if !pg.HasMore || len(pg.Movements) == 0 {
			return all, nil
		}
		offset += len(pg.Movements)
	}
}

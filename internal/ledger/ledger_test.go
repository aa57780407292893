package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nexfone/invtrack/internal/diff"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
)

func TestFromChange_MapsAllFieldPairs(t *testing.T) {
	before := models.InventoryItem{IMEI: "356938035643809", Grade: "A", Status: models.ItemStatusInStock, LockStatus: "Unlocked", Location: "WH-1"}
	after := models.InventoryItem{IMEI: "356938035643809", Grade: "B", Status: models.ItemStatusReserved, LockStatus: "AT&T", Location: "WH-2"}

	c := diff.Change{
		IMEI: "356938035643809",
		Type: models.MovementStatusChanged,
		Fields: []diff.FieldChange{
			{Field: "status", Before: "in_stock", After: "reserved"},
			{Field: "grade", Before: "A", After: "B"},
			{Field: "lockStatus", Before: "Unlocked", After: "AT&T"},
			{Field: "location", Before: "WH-1", After: "WH-2"},
		},
		Before: &before,
		After:  after,
	}

	now := time.Now().UTC()
	m, err := FromChange(c, models.SourceSheetSync, nil, now)
	if err != nil {
		t.Fatalf("FromChange failed: %v", err)
	}

	if m.FromStatus != "in_stock" || m.ToStatus != "reserved" {
		t.Errorf("Status pair not mapped: %s -> %s", m.FromStatus, m.ToStatus)
	}
	if m.FromGrade != "A" || m.ToGrade != "B" {
		t.Errorf("Grade pair not mapped: %s -> %s", m.FromGrade, m.ToGrade)
	}
	if m.FromLock != "Unlocked" || m.ToLock != "AT&T" {
		t.Errorf("Lock pair not mapped: %s -> %s", m.FromLock, m.ToLock)
	}
	if m.FromLocation != "WH-1" || m.ToLocation != "WH-2" {
		t.Errorf("Location pair not mapped: %s -> %s", m.FromLocation, m.ToLocation)
	}
	if len(m.Snapshot) == 0 {
		t.Error("Expected audit snapshot to be populated")
	}
	if !m.PerformedAt.Equal(now) {
		t.Errorf("PerformedAt not carried: %v", m.PerformedAt)
	}
}

func seedMovements(t *testing.T, l *Ledger, n int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		m := &models.Movement{
			MovementType: models.MovementAdded,
			IMEI:         fmt.Sprintf("%015d", 100000000000000+i),
			Source:       models.SourceSheetSync,
			PerformedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := l.Append(context.Background(), m); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

func TestQuery_PaginationNoOverlap(t *testing.T) {
	l := New(store.NewMemoryStore())
	seedMovements(t, l, 25)

	seen := make(map[string]bool)
	var hasMoreFalseCount int
	for offset := 0; offset < 30; offset += 10 {
		pg, err := l.Query(context.Background(), store.MovementFilter{}, 10, offset)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		for _, m := range pg.Movements {
			if seen[m.ID] {
				t.Errorf("Movement %s returned on two pages", m.ID)
			}
			seen[m.ID] = true
		}
		if !pg.HasMore {
			hasMoreFalseCount++
		}
		if pg.Total != 25 {
			t.Errorf("Expected total 25, got %d", pg.Total)
		}
	}
	if len(seen) != 25 {
		t.Errorf("Expected all 25 movements across pages, got %d", len(seen))
	}
	if hasMoreFalseCount != 1 {
		t.Errorf("hasMore should be false exactly once (final page), got %d", hasMoreFalseCount)
	}
}

func TestHistory_LongTrailNotTruncated(t *testing.T) {
	l := New(store.NewMemoryStore())
	imei := "356938035643809"
	total := MaxLimit + 37

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < total; i++ {
		m := &models.Movement{
			MovementType: models.MovementStatusChanged,
			IMEI:         imei,
			Source:       models.SourceSheetSync,
			PerformedAt:  base.Add(time.Duration(i) * time.Second),
		}
		if _, err := l.Append(context.Background(), m); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	movements, err := l.History(context.Background(), imei)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(movements) != total {
		t.Fatalf("Expected the full trail of %d movements, got %d", total, len(movements))
	}
	seen := make(map[string]bool, total)
	for i, m := range movements {
		if seen[m.ID] {
			t.Fatalf("Movement %s appears twice in the trail", m.ID)
		}
		seen[m.ID] = true
		if i > 0 && m.PerformedAt.After(movements[i-1].PerformedAt) {
			t.Fatal("Trail must stay ordered newest first across page boundaries")
		}
	}
}

func TestQuery_OrderedNewestFirstWithStableTieBreak(t *testing.T) {
	l := New(store.NewMemoryStore())
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Three movements with identical timestamps
	for i := 0; i < 3; i++ {
		m := &models.Movement{
			MovementType: models.MovementGradeChanged,
			IMEI:         "356938035643809",
			Source:       models.SourceSheetSync,
			PerformedAt:  ts,
			ToGrade:      fmt.Sprintf("G%d", i),
		}
		if _, err := l.Append(context.Background(), m); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	pg, err := l.Query(context.Background(), store.MovementFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(pg.Movements) != 3 {
		t.Fatalf("Expected 3 movements, got %d", len(pg.Movements))
	}
	// Identical performedAt: insertion order preserved, newest insertion first
	if pg.Movements[0].ToGrade != "G2" || pg.Movements[2].ToGrade != "G0" {
		t.Errorf("Tie-break by sequence broken: %s, %s, %s",
			pg.Movements[0].ToGrade, pg.Movements[1].ToGrade, pg.Movements[2].ToGrade)
	}
}

func TestQuery_FilterByTypeAndIMEI(t *testing.T) {
	l := New(store.NewMemoryStore())
	ctx := context.Background()

	add := func(mtype models.MovementType, imei string) {
		if _, err := l.Append(ctx, &models.Movement{MovementType: mtype, IMEI: imei, Source: models.SourceSheetSync}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	add(models.MovementAdded, "356938035643809")
	add(models.MovementShipped, "356938035643809")
	add(models.MovementAdded, "490154203237518")

	pg, err := l.Query(ctx, store.MovementFilter{Type: models.MovementAdded}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if pg.Total != 2 {
		t.Errorf("Expected 2 added movements, got %d", pg.Total)
	}

	pg, err = l.Query(ctx, store.MovementFilter{IMEI: "356938035643809"}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if pg.Total != 2 {
		t.Errorf("Expected 2 movements for IMEI, got %d", pg.Total)
	}
}

func TestQuery_UpperBoundFreezesView(t *testing.T) {
	l := New(store.NewMemoryStore())
	ctx := context.Background()
	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	before := &models.Movement{MovementType: models.MovementAdded, IMEI: "356938035643809", Source: models.SourceSheetSync, PerformedAt: cutoff.Add(-time.Hour)}
	after := &models.Movement{MovementType: models.MovementShipped, IMEI: "356938035643809", Source: models.SourceOutboundSync, PerformedAt: cutoff.Add(time.Hour)}
	if _, err := l.Append(ctx, before); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Append(ctx, after); err != nil {
		t.Fatal(err)
	}

	pg, err := l.Query(ctx, store.MovementFilter{To: &cutoff}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if pg.Total != 1 || pg.Movements[0].MovementType != models.MovementAdded {
		t.Errorf("Upper bound should exclude later appends, got %+v", pg.Movements)
	}
}

func TestQuery_LimitClamping(t *testing.T) {
	l := New(store.NewMemoryStore())
	seedMovements(t, l, 5)

	pg, err := l.Query(context.Background(), store.MovementFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(pg.Movements) != 5 {
		t.Errorf("Zero limit should fall back to default, got %d rows", len(pg.Movements))
	}

	pg, err = l.Query(context.Background(), store.MovementFilter{}, -3, -10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(pg.Movements) != 5 {
		t.Errorf("Negative limit/offset should normalize, got %d rows", len(pg.Movements))
	}
}

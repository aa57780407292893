package recon

import (
	"context"
	"errors"
	"testing"

	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
)

func seedInventory(t *testing.T, s store.Store, imeis ...string) {
	t.Helper()
	for _, id := range imeis {
		item := sheetItem(id, "A")
		if err := s.SaveItem(context.Background(), &item); err != nil {
			t.Fatalf("Seed failed: %v", err)
		}
	}
}

func outboundEngine(s store.Store, records []OutboundRecord) *Engine {
	l := ledger.New(s)
	return NewEngine(s, l, &fakeSnapshotSource{snap: &Snapshot{}}, &fakeOutboundSource{records: records})
}

func TestSyncOutbound_MarksShipped(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	seedInventory(t, s, "356938035643809", "490154203237518")

	e := outboundEngine(s, []OutboundRecord{
		{IMEI: "356938035643809", Reference: "TRK-1001"},
	})

	run, err := e.SyncOutbound(ctx, nil)
	if err != nil {
		t.Fatalf("SyncOutbound failed: %v", err)
	}
	if run.ItemsShipped != 1 {
		t.Errorf("Expected 1 shipped, got %d", run.ItemsShipped)
	}

	item, _ := s.GetItem(ctx, "356938035643809")
	if item.Status != models.ItemStatusShipped {
		t.Errorf("Item should be shipped, got %s", item.Status)
	}
	other, _ := s.GetItem(ctx, "490154203237518")
	if other.Status != models.ItemStatusInStock {
		t.Errorf("Unlisted item must stay in_stock, got %s", other.Status)
	}

	pg, _ := s.QueryMovements(ctx, store.MovementFilter{Type: models.MovementShipped}, 10, 0)
	if pg.Total != 1 {
		t.Fatalf("Expected exactly one shipped movement, got %d", pg.Total)
	}
	m := pg.Movements[0]
	if m.Source != models.SourceOutboundSync {
		t.Errorf("Movement source wrong: %s", m.Source)
	}
	if m.FromStatus != "in_stock" || m.ToStatus != "shipped" {
		t.Errorf("Status pair wrong: %s -> %s", m.FromStatus, m.ToStatus)
	}
	if m.Notes != "outbound ref TRK-1001" {
		t.Errorf("Reference not carried into notes: %q", m.Notes)
	}
}

func TestSyncOutbound_SecondRunIsIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	seedInventory(t, s, "356938035643809", "490154203237518")

	records := []OutboundRecord{
		{IMEI: "356938035643809"},
		{IMEI: "490154203237518"},
	}

	first, err := outboundEngine(s, records).SyncOutbound(ctx, nil)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := outboundEngine(s, records).SyncOutbound(ctx, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if second.ItemsAlreadyShipped != first.ItemsShipped {
		t.Errorf("Expected itemsAlreadyShipped == first run's itemsShipped (%d), got %d",
			first.ItemsShipped, second.ItemsAlreadyShipped)
	}
	if second.ItemsShipped != 0 {
		t.Errorf("Second run must ship nothing, got %d", second.ItemsShipped)
	}

	// No duplicate ledger entries: still exactly one shipped movement per IMEI
	pg, _ := s.QueryMovements(ctx, store.MovementFilter{Type: models.MovementShipped}, 10, 0)
	if pg.Total != 2 {
		t.Errorf("Expected 2 shipped movements after two runs, got %d", pg.Total)
	}
}

func TestSyncOutbound_UnknownIMEICounted(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	e := outboundEngine(s, []OutboundRecord{
		{IMEI: "356938035643809"}, // not in inventory
		{IMEI: "bogus"},           // malformed
	})

	run, err := e.SyncOutbound(ctx, nil)
	if err != nil {
		t.Fatalf("SyncOutbound failed: %v", err)
	}
	if run.ItemsNotFound != 1 {
		t.Errorf("Expected 1 not found, got %d", run.ItemsNotFound)
	}
	if run.ParseErrors != 1 {
		t.Errorf("Expected 1 parse error, got %d", run.ParseErrors)
	}

	pg, _ := s.QueryMovements(ctx, store.MovementFilter{}, 10, 0)
	if pg.Total != 0 {
		t.Errorf("Nothing to transition: ledger must stay empty, has %d", pg.Total)
	}
}

func TestSyncOutbound_FetchErrorFailsRun(t *testing.T) {
	s := store.NewMemoryStore()
	l := ledger.New(s)
	e := NewEngine(s, l, &fakeSnapshotSource{snap: &Snapshot{}},
		&fakeOutboundSource{err: errors.New("erp: connection refused")})

	run, err := e.SyncOutbound(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected fetch error")
	}
	if run.Status != models.SyncFailed {
		t.Errorf("Expected failed run, got %s", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Error("Error message must be captured on the run")
	}
}

func TestSheetThenOutbound_MissingConfirmedShipped(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	seedInventory(t, s, "356938035643809")

	// Device dropped off the sheet...
	sheetEngine, _ := newTestEngineReusing(s, &fakeSnapshotSource{snap: &Snapshot{}})
	run, err := sheetEngine.SyncSheets(ctx, nil)
	if err != nil {
		t.Fatalf("Sheet sync failed: %v", err)
	}
	if run.ItemsMissing != 1 {
		t.Fatalf("Expected device reported missing, got %d", run.ItemsMissing)
	}

	// ...and the outbound list confirms it shipped
	out := outboundEngine(s, []OutboundRecord{{IMEI: "356938035643809"}})
	if _, err := out.SyncOutbound(ctx, nil); err != nil {
		t.Fatalf("Outbound sync failed: %v", err)
	}

	item, err := s.GetItem(ctx, "356938035643809")
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != models.ItemStatusShipped {
		t.Errorf("Confirmed missing device must be shipped, got %s", item.Status)
	}
	pg, _ := s.QueryMovements(ctx, store.MovementFilter{Type: models.MovementShipped, IMEI: "356938035643809"}, 10, 0)
	if pg.Total != 1 {
		t.Errorf("Expected exactly one shipped movement, got %d", pg.Total)
	}
}

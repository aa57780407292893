package recon

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
)

// SyncOutbound runs the shipment matcher: every IMEI on the outbound list
// that still sits in current inventory is marked shipped with one ledger
// entry. Matching is idempotent: an IMEI already shipped by a prior run is
// counted (itemsAlreadyShipped) but produces no duplicate Movement; the
// ledger records transitions, not re-confirmations. Unknown IMEIs are
// counted and skipped; there is nothing to transition.
func (e *Engine) SyncOutbound(ctx context.Context, triggeredBy *string) (*models.SyncRun, error) {
	run, err := e.begin(ctx, models.SourceOutboundSync)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log.Println("🚚 Outbound sync: fetching outbound list...")
	records, err := e.outbound.FetchOutboundList(ctx)
	if err != nil {
		e.finish(ctx, run, err)
		return run, err
	}
	run.SourceRowCount = len(records)

	now := time.Now().UTC()
	for _, rec := range records {
		id, ok := normalizeOutboundIMEI(rec.IMEI)
		if !ok {
			run.ParseErrors++
			continue
		}
		run.ItemsProcessed++

		item, err := e.store.GetItem(ctx, id)
		if err == store.ErrNotFound {
			run.ItemsNotFound++
			continue
		}
		if err != nil {
			e.finish(ctx, run, err)
			return run, err
		}

		if item.Status == models.ItemStatusShipped {
			run.ItemsAlreadyShipped++
			continue
		}

		if err := e.markShipped(ctx, item, rec, triggeredBy, now); err != nil {
			e.finish(ctx, run, err)
			return run, err
		}
		run.ItemsShipped++
	}

	if count, err := e.store.CountItems(ctx); err == nil {
		run.DestRowCount = int(count)
	}

	e.finish(ctx, run, nil)
	return run, nil
}

// markShipped applies the status mutation and appends the shipped movement
func (e *Engine) markShipped(ctx context.Context, item *models.InventoryItem, rec OutboundRecord, actor *string, at time.Time) error {
	fromStatus := string(item.Status)
	item.Status = models.ItemStatusShipped
	item.LastUpdated = at

	if err := e.store.SaveItem(ctx, item); err != nil {
		return err
	}

	notes := ""
	if rec.Reference != "" {
		notes = fmt.Sprintf("outbound ref %s", rec.Reference)
	}
	movement := &models.Movement{
		MovementType: models.MovementShipped,
		IMEI:         item.IMEI,
		FromStatus:   fromStatus,
		ToStatus:     string(models.ItemStatusShipped),
		Source:       models.SourceOutboundSync,
		PerformedBy:  actor,
		PerformedAt:  at,
		Notes:        notes,
	}
	if _, err := e.ledger.Append(ctx, movement); err != nil {
		return err
	}
	return nil
}

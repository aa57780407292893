// Package recon coordinates reconciliation runs: fetch an external
// snapshot, diff it against persisted state, apply mutations, write ledger
// entries and keep the SyncRun record honest. One run at a time, globally,
// across both the sheet sync and the outbound matcher.
package recon

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nexfone/invtrack/internal/diff"
	"github.com/nexfone/invtrack/internal/imei"
	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
)

// DefaultRunTimeout bounds a single run so a stuck fetch can never block
// future syncs indefinitely.
const DefaultRunTimeout = 10 * time.Minute

// Notifier receives sync lifecycle events (websocket hub in production)
type Notifier interface {
	NotifySync(event string, run *models.SyncRun)
}

// Engine is the reconciliation orchestrator
type Engine struct {
	store    store.Store
	ledger   *ledger.Ledger
	snapshot SnapshotSource
	outbound OutboundSource
	notifier Notifier
	timeout  time.Duration

	// mu serializes runs within this process. The coarse policy: only one
	// run, main or outbound, in progress at a time.
	mu sync.Mutex
}

// Option configures the engine
type Option func(*Engine)

// WithNotifier attaches a sync event notifier
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithTimeout overrides the per-run timeout
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates the orchestrator
func NewEngine(s store.Store, l *ledger.Ledger, snap SnapshotSource, out OutboundSource, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		ledger:   l,
		snapshot: snap,
		outbound: out,
		timeout:  DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) notify(event string, run *models.SyncRun) {
	if e.notifier != nil {
		e.notifier.NotifySync(event, run)
	}
}

// begin acquires the run lock, recovers stale runs and creates the SyncRun
// record. Returns ErrSyncInProgress when another run is active.
func (e *Engine) begin(ctx context.Context, source models.MovementSource) (*models.SyncRun, error) {
	if !e.mu.TryLock() {
		return nil, ErrSyncInProgress
	}

	// A run stuck in_progress past the timeout (crash, kill -9) would
	// otherwise block syncing forever. Expire it before checking.
	if n, err := e.store.FailStaleRuns(ctx, e.timeout, "abandoned: exceeded sync timeout"); err != nil {
		e.mu.Unlock()
		return nil, err
	} else if n > 0 {
		log.Printf("⚠️  Recovered %d stale sync run(s)", n)
	}

	if active, err := e.store.ActiveSyncRun(ctx); err == nil && active != nil {
		e.mu.Unlock()
		return nil, ErrSyncInProgress
	} else if err != nil && err != store.ErrNotFound {
		e.mu.Unlock()
		return nil, err
	}

	run := &models.SyncRun{
		Source:    source,
		Status:    models.SyncInProgress,
		StartedAt: time.Now().UTC(),
	}
	if err := e.store.CreateSyncRun(ctx, run); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	e.notify("sync_started", run)
	return run, nil
}

// finish marks the run terminal and releases the lock
func (e *Engine) finish(ctx context.Context, run *models.SyncRun, runErr error) {
	defer e.mu.Unlock()

	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.Status = models.SyncFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = models.SyncCompleted
	}

	if err := e.store.UpdateSyncRun(ctx, run); err != nil {
		// The watchdog will expire the record; partial counters are lost
		// but applied mutations stand.
		log.Printf("❌ Failed to finalize sync run %s: %v", run.ID, err)
	}

	if runErr != nil {
		e.notify("sync_failed", run)
		log.Printf("❌ Sync %s failed: %v", run.Source, runErr)
	} else {
		e.notify("sync_completed", run)
		log.Printf("✅ Sync %s completed: %d processed, %d added, %d updated, %d unchanged",
			run.Source, run.ItemsProcessed, run.ItemsAdded, run.ItemsUpdated, run.ItemsUnchanged)
	}
}

// SyncSheets runs the main reconciliation pass: fetch the sheet snapshot,
// diff it against current state, apply mutations item by item and ledger
// each transition. Partial progress before a late failure is preserved and
// counted; counters always reflect exactly what was durably applied.
func (e *Engine) SyncSheets(ctx context.Context, triggeredBy *string) (*models.SyncRun, error) {
	run, err := e.begin(ctx, models.SourceSheetSync)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log.Println("🔄 Sheet sync: fetching snapshot...")
	snap, err := e.snapshot.FetchSnapshot(ctx)
	if err != nil {
		// No mutations applied yet: the run fails clean.
		e.finish(ctx, run, err)
		return run, err
	}
	run.SourceRowCount = snap.SourceRows
	run.ParseErrors = snap.ParseErrors

	prevItems, err := e.store.AllItems(ctx)
	if err != nil {
		e.finish(ctx, run, err)
		return run, err
	}
	previous := make(map[string]models.InventoryItem, len(prevItems))
	for _, it := range prevItems {
		previous[it.IMEI] = it
	}

	res := diff.Compute(previous, snap.Items)
	run.ParseErrors += res.Stats.ParseErrors
	run.ItemsUnchanged = res.Stats.Unchanged
	run.ItemsProcessed = res.Stats.Unchanged
	if res.Stats.Duplicates > 0 {
		log.Printf("⚠️  Snapshot contained %d duplicate IMEI(s), last occurrence wins", res.Stats.Duplicates)
	}

	now := time.Now().UTC()
	for _, change := range res.Changes {
		if err := e.applyChange(ctx, change, run, triggeredBy, now); err != nil {
			// Storage errors are fatal to the run. Mutations applied so
			// far stand; counters reflect exactly those.
			e.finish(ctx, run, err)
			return run, err
		}
	}

	// IMEIs in persisted state but absent from the snapshot. Devices
	// already marked shipped are expected to drop off the sheet. The rest
	// are surfaced as missing and left untouched; only the outbound
	// matcher (or an explicit bulk delete) transitions them.
	for _, id := range res.MissingFromIncoming {
		if prev, ok := previous[id]; ok && prev.Status == models.ItemStatusShipped {
			continue
		}
		run.ItemsMissing++
	}

	if count, err := e.store.CountItems(ctx); err == nil {
		run.DestRowCount = int(count)
	}

	e.finish(ctx, run, nil)
	return run, nil
}

// applyChange mutates the current-state row and appends the ledger entry
// for one classified transition, bumping the matching run counter.
func (e *Engine) applyChange(ctx context.Context, change diff.Change, run *models.SyncRun, actor *string, at time.Time) error {
	item := change.After
	if item.Status == "" {
		item.Status = models.ItemStatusInStock
	}
	item.LastUpdated = at

	if err := e.store.SaveItem(ctx, &item); err != nil {
		return err
	}

	movement, err := ledger.FromChange(change, models.SourceSheetSync, actor, at)
	if err != nil {
		return err
	}
	if _, err := e.ledger.Append(ctx, movement); err != nil {
		return err
	}

	run.ItemsProcessed++
	if change.Type == models.MovementAdded {
		run.ItemsAdded++
	} else {
		run.ItemsUpdated++
	}
	return nil
}

// Status returns the current or last sync run
func (e *Engine) Status(ctx context.Context) (*models.SyncRun, error) {
	if run, err := e.store.ActiveSyncRun(ctx); err == nil {
		return run, nil
	} else if err != store.ErrNotFound {
		return nil, err
	}
	return e.store.LatestSyncRun(ctx)
}

// normalizeOutboundIMEI is shared by the outbound matcher
func normalizeOutboundIMEI(raw string) (string, bool) {
	id := imei.Normalize(raw)
	return id, imei.Valid(id)
}

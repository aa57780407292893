package recon

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers the main reconciliation on a cron expression. A tick
// that collides with a running sync is skipped, mirroring the rejection
// policy for manual triggers.
type Scheduler struct {
	engine *Engine
	spec   string
	cron   *cron.Cron
}

// NewScheduler creates a scheduler; spec is a standard cron expression
// (e.g. "*/30 * * * *"). An empty spec disables scheduling.
func NewScheduler(engine *Engine, spec string) *Scheduler {
	return &Scheduler{
		engine: engine,
		spec:   spec,
		cron:   cron.New(),
	}
}

// Start registers the job and starts the cron loop
func (s *Scheduler) Start() error {
	if s.spec == "" {
		log.Println("⏰ Scheduler disabled: SYNC_CRON not configured")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("⏰ Scheduler started (%s)", s.spec)
	return nil
}

// Stop halts the cron loop; a run already in flight finishes on its own
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Scheduler stopped")
}

func (s *Scheduler) tick() {
	log.Println("⏰ Scheduled sheet sync triggered")
	if _, err := s.engine.SyncSheets(context.Background(), nil); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			log.Println("⏭️  Sync already running, skipping scheduled run")
			return
		}
		log.Printf("❌ Scheduled sync failed: %v", err)
	}
}

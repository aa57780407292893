package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexfone/invtrack/internal/config"
	"github.com/nexfone/invtrack/internal/database"
	"github.com/nexfone/invtrack/internal/erp"
	"github.com/nexfone/invtrack/internal/handlers"
	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/recon"
	"github.com/nexfone/invtrack/internal/sheets"
	"github.com/nexfone/invtrack/internal/store"
	ws "github.com/nexfone/invtrack/internal/websocket"
)

// unconfiguredSnapshot stands in when no spreadsheet is configured so a
// sync trigger fails with a clear message instead of a nil deref.
type unconfiguredSnapshot struct{}

func (unconfiguredSnapshot) FetchSnapshot(ctx context.Context) (*recon.Snapshot, error) {
	return nil, errors.New("sheet source not configured: set SHEETS_SPREADSHEET_ID")
}

type unconfiguredOutbound struct{}

func (unconfiguredOutbound) FetchOutboundList(ctx context.Context) ([]recon.OutboundRecord, error) {
	return nil, errors.New("outbound source not configured: set ERP_URL")
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-migrate schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.InventoryItem{},
		&models.Movement{},
		&models.SyncRun{},
		&models.ActivityLogEntry{},
		&models.User{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	st := store.NewGormStore(db)
	movementLedger := ledger.New(st)

	// 4. External sources
	var snapshotSource recon.SnapshotSource = unconfiguredSnapshot{}
	if cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.NewClient(context.Background(), sheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			ReadRange:       cfg.Sheets.ReadRange,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			APIKey:          cfg.Sheets.APIKey,
		})
		if err != nil {
			log.Printf("⚠️ Sheets: failed to init client: %v", err)
		} else {
			snapshotSource = client
			log.Println("✅ Sheets: snapshot source ready")
		}
	} else {
		log.Println("⚠️ Sheets: SHEETS_SPREADSHEET_ID not set, sheet sync disabled")
	}

	var outboundSource recon.OutboundSource = unconfiguredOutbound{}
	if cfg.ERP.URL != "" {
		outboundSource = erp.NewClient(erp.Config{
			URL:      cfg.ERP.URL,
			Database: cfg.ERP.Database,
			Username: cfg.ERP.Username,
			Password: cfg.ERP.Password,
			Model:    cfg.ERP.Model,
		})
		log.Println("✅ ERP: outbound source ready")
	} else {
		log.Println("⚠️ ERP: ERP_URL not set, outbound sync disabled")
	}

	// 5. Event hub and reconciliation engine
	hub := ws.NewHub()
	go hub.Run()

	engine := recon.NewEngine(st, movementLedger, snapshotSource, outboundSource,
		recon.WithNotifier(hub),
		recon.WithTimeout(time.Duration(cfg.Sync.TimeoutMinutes)*time.Minute),
	)

	scheduler := recon.NewScheduler(engine, cfg.Sync.Cron)
	if cfg.Sync.Cron != "" {
		if err := scheduler.Start(); err != nil {
			log.Printf("⚠️ Scheduler: failed to start: %v", err)
		} else {
			log.Printf("⏰ Scheduler: running with spec %q", cfg.Sync.Cron)
		}
	}

	// 6. HTTP router
	router := handlers.NewRouter(st, movementLedger, engine, hub, cfg.JWTSecret)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("❌ Database shutdown error: %v", err)
	}

	log.Println("🛑 Shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nexfone/invtrack/internal/config"
	"github.com/nexfone/invtrack/internal/database"
	"github.com/nexfone/invtrack/internal/ledger"
	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/store"
	"github.com/nexfone/invtrack/internal/utils"
)

func main() {
	fmt.Println("🌱 invtrack Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.InventoryItem{},
		&models.Movement{},
		&models.SyncRun{},
		&models.ActivityLogEntry{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	ctx := context.Background()
	st := store.NewGormStore(db)
	movementLedger := ledger.New(st)

	// Existing inventory means a previous seed or live data; bail out.
	count, err := st.CountItems(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to count items: %v", err)
	}
	if count > 0 {
		fmt.Printf("⚠️  Database already has %d devices. Aborting; clear it via the API first.\n", count)
		return
	}

	fmt.Println("👤 Creating demo accounts...")
	for _, acct := range []struct {
		email, password, name string
		role                  models.UserRole
	}{
		{"admin@demo.local", "admin123", "Demo Admin", models.RoleAdmin},
		{"ops@demo.local", "ops123", "Demo Operator", models.RolePowerUser},
	} {
		hashed, err := utils.HashPassword(acct.password)
		if err != nil {
			log.Fatalf("❌ Failed to hash password: %v", err)
		}
		u := &models.User{Email: acct.email, Password: hashed, Name: acct.name, Role: acct.role, IsActive: true}
		if err := st.SaveUser(ctx, u); err != nil {
			log.Fatalf("❌ Failed to create user %s: %v", acct.email, err)
		}
		fmt.Printf("   %s (%s / %s)\n", acct.email, acct.role, acct.password)
	}

	fmt.Println("📦 Creating demo devices...")
	now := time.Now().UTC()
	devices := []models.InventoryItem{
		{IMEI: "356938035643809", Model: "iPhone 13", Storage: "128GB", Color: "Midnight", LockStatus: "Unlocked", Grade: "A", Batch: "ACME-2401", MasterCarton: "MC-001", Location: "Shelf A", Status: models.ItemStatusInStock},
		{IMEI: "356938035643817", Model: "iPhone 13", Storage: "128GB", Color: "Starlight", LockStatus: "Unlocked", Grade: "A", Batch: "ACME-2401", MasterCarton: "MC-001", Location: "Shelf A", Status: models.ItemStatusInStock},
		{IMEI: "356938035643825", Model: "iPhone 13", Storage: "256GB", Color: "Blue", LockStatus: "AT&T", Grade: "B+", Batch: "ACME-2401", MasterCarton: "MC-002", Location: "Shelf A", Status: models.ItemStatusInStock},
		{IMEI: "356938035643833", Model: "iPhone 12", Storage: "64GB", Color: "Black", LockStatus: "Unlocked", Grade: "B", Batch: "ACME-2402", MasterCarton: "MC-003", Location: "Shelf B", Status: models.ItemStatusInStock},
		{IMEI: "356938035643841", Model: "iPhone 12", Storage: "64GB", Color: "White", LockStatus: "T-Mobile", Grade: "B", Batch: "ACME-2402", MasterCarton: "MC-003", Location: "Shelf B", Status: models.ItemStatusInStock},
		{IMEI: "356938035643858", Model: "Galaxy S22", Storage: "128GB", Color: "Phantom Black", LockStatus: "Unlocked", Grade: "A", Batch: "KOR-2401", MasterCarton: "MC-004", Location: "Shelf B", Status: models.ItemStatusInStock},
		{IMEI: "356938035643866", Model: "Galaxy S22", Storage: "128GB", Color: "Phantom White", LockStatus: "Unlocked", Grade: "C", Batch: "KOR-2401", MasterCarton: "MC-004", Location: "Returns", Status: models.ItemStatusReturned},
		{IMEI: "356938035643874", Model: "Pixel 7", Storage: "128GB", Color: "Obsidian", LockStatus: "Unlocked", Grade: "A", Batch: "GGL-2401", MasterCarton: "MC-005", Location: "Output", Status: models.ItemStatusShipped},
	}

	for i := range devices {
		item := devices[i]
		item.LastUpdated = now
		if err := st.SaveItem(ctx, &item); err != nil {
			log.Fatalf("❌ Failed to seed device %s: %v", item.IMEI, err)
		}

		m := &models.Movement{
			MovementType: models.MovementAdded,
			IMEI:         item.IMEI,
			ToStatus:     string(models.ItemStatusInStock),
			Source:       models.SourceManual,
			PerformedAt:  now.Add(-24 * time.Hour),
			Notes:        "demo seed",
		}
		if _, err := movementLedger.Append(ctx, m); err != nil {
			log.Fatalf("❌ Failed to ledger device %s: %v", item.IMEI, err)
		}

		// The shipped demo device gets a matching shipped movement so the
		// history view has something to show.
		if item.Status == models.ItemStatusShipped {
			ship := &models.Movement{
				MovementType: models.MovementShipped,
				IMEI:         item.IMEI,
				FromStatus:   string(models.ItemStatusInStock),
				ToStatus:     string(models.ItemStatusShipped),
				Source:       models.SourceOutboundSync,
				PerformedAt:  now.Add(-2 * time.Hour),
				Notes:        "outbound ref DEMO-1001",
			}
			if _, err := movementLedger.Append(ctx, ship); err != nil {
				log.Fatalf("❌ Failed to ledger shipment for %s: %v", item.IMEI, err)
			}
		}
	}

	fmt.Printf("✅ Seeded %d devices\n", len(devices))
	fmt.Println("🎉 Done. Start the API with: go run ./cmd/api")
}

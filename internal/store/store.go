// Package store defines the persistence contract consumed by the
// reconciliation core: transactional get/save for inventory items,
// append-only inserts for movements, and sync-run bookkeeping. The GORM
// implementation backs production; an in-memory implementation backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nexfone/invtrack/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// MovementFilter narrows a ledger query. Zero values mean "no constraint".
type MovementFilter struct {
	Type   models.MovementType
	IMEI   string
	Source models.MovementSource
	From   *time.Time
	To     *time.Time
}

// MovementPage is one page of ledger results ordered by performedAt
// descending with a stable tie-break on the insertion sequence.
type MovementPage struct {
	Movements []models.Movement `json:"movements"`
	Total     int64             `json:"total"`
	HasMore   bool              `json:"hasMore"`
}

// ItemFilter narrows inventory listing
type ItemFilter struct {
	Status models.ItemStatus
	Grade  string
	Model  string
	Batch  string
}

// Store is the persistence boundary for the reconciliation core and the
// HTTP surface. All methods honor context cancellation where the backing
// driver supports it.
type Store interface {
	// Inventory current state
	GetItem(ctx context.Context, imei string) (*models.InventoryItem, error)
	SaveItem(ctx context.Context, item *models.InventoryItem) error // upsert by IMEI
	DeleteItems(ctx context.Context, imeis []string) (int64, error)
	ClearItems(ctx context.Context) (int64, error)
	ListItems(ctx context.Context, f ItemFilter, limit, offset int) ([]models.InventoryItem, int64, error)
	AllItems(ctx context.Context) ([]models.InventoryItem, error)
	CountItems(ctx context.Context) (int64, error)

	// Movement ledger (append-only)
	AppendMovement(ctx context.Context, m *models.Movement) error
	QueryMovements(ctx context.Context, f MovementFilter, limit, offset int) (*MovementPage, error)
	LastMovement(ctx context.Context, imei string) (*models.Movement, error)

	// Sync runs
	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	UpdateSyncRun(ctx context.Context, run *models.SyncRun) error
	LatestSyncRun(ctx context.Context) (*models.SyncRun, error)
	ActiveSyncRun(ctx context.Context) (*models.SyncRun, error)
	FailStaleRuns(ctx context.Context, olderThan time.Duration, message string) (int64, error)

	// Activity log (append-only)
	AppendActivity(ctx context.Context, e *models.ActivityLogEntry) error
	ListActivity(ctx context.Context, limit, offset int) ([]models.ActivityLogEntry, int64, error)

	// Users
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

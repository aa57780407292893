package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexfone/invtrack/internal/database"
	"github.com/nexfone/invtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of the shared PostgreSQL connection
type GormStore struct {
	db *database.DB
}

// NewGormStore creates the production store
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetItem(ctx context.Context, imei string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).First(&item, "imei = ?", imei).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item %s: %w", imei, err)
	}
	return &item, nil
}

func (s *GormStore) SaveItem(ctx context.Context, item *models.InventoryItem) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "imei"}},
		UpdateAll: true,
	}).Create(item).Error; err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.IMEI, err)
	}
	return nil
}

func (s *GormStore) DeleteItems(ctx context.Context, imeis []string) (int64, error) {
	if len(imeis) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("imei IN ?", imeis).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete items: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) ClearItems(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.InventoryItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear inventory: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) ListItems(ctx context.Context, f ItemFilter, limit, offset int) ([]models.InventoryItem, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.InventoryItem{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Grade != "" {
		q = q.Where("grade = ?", f.Grade)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.Batch != "" {
		q = q.Where("batch = ?", f.Batch)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	var items []models.InventoryItem
	if err := q.Order("imei ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}

func (s *GormStore) AllItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return items, nil
}

func (s *GormStore) CountItems(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return n, nil
}

func (s *GormStore) AppendMovement(ctx context.Context, m *models.Movement) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to append movement for %s: %w", m.IMEI, err)
	}
	return nil
}

func (s *GormStore) QueryMovements(ctx context.Context, f MovementFilter, limit, offset int) (*MovementPage, error) {
	q := s.db.WithContext(ctx).Model(&models.Movement{})
	if f.Type != "" {
		q = q.Where("movement_type = ?", f.Type)
	}
	if f.IMEI != "" {
		q = q.Where("imei = ?", f.IMEI)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.From != nil {
		q = q.Where("performed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("performed_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	var movements []models.Movement
	if err := q.Order("performed_at DESC, seq DESC").Limit(limit).Offset(offset).Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	return &MovementPage{
		Movements: movements,
		Total:     total,
		HasMore:   int64(offset+len(movements)) < total,
	}, nil
}

func (s *GormStore) LastMovement(ctx context.Context, imei string) (*models.Movement, error) {
	var m models.Movement
	err := s.db.WithContext(ctx).Where("imei = ?", imei).Order("performed_at DESC, seq DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last movement for %s: %w", imei, err)
	}
	return &m, nil
}

func (s *GormStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateSyncRun(ctx context.Context, run *models.SyncRun) error {
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to update sync run %s: %w", run.ID, err)
	}
	return nil
}

func (s *GormStore) LatestSyncRun(ctx context.Context) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest sync run: %w", err)
	}
	return &run, nil
}

func (s *GormStore) ActiveSyncRun(ctx context.Context) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).Where("status = ?", models.SyncInProgress).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active sync run: %w", err)
	}
	return &run, nil
}

func (s *GormStore) FailStaleRuns(ctx context.Context, olderThan time.Duration, message string) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.SyncRun{}).
		Where("status = ? AND started_at < ?", models.SyncInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":        models.SyncFailed,
			"error_message": message,
			"completed_at":  now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire stale runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) AppendActivity(ctx context.Context, e *models.ActivityLogEntry) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to append activity log entry: %w", err)
	}
	return nil
}

func (s *GormStore) ListActivity(ctx context.Context, limit, offset int) ([]models.ActivityLogEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.ActivityLogEntry{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity log: %w", err)
	}
	var entries []models.ActivityLogEntry
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity log: %w", err)
	}
	return entries, total, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.Email, err)
	}
	return nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

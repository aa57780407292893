package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexfone/invtrack/internal/models"
)

// MemoryStore is an in-memory Store used by tests and the demo seeder.
// It mirrors the ordering and pagination semantics of the GORM store.
type MemoryStore struct {
	mu          sync.RWMutex
	items       map[string]models.InventoryItem
	movements   []models.Movement
	runs        []models.SyncRun
	activity    []models.ActivityLogEntry
	users       map[string]models.User
	seq         int64
	activitySeq int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]models.InventoryItem),
		users: make(map[string]models.User),
	}
}

func (s *MemoryStore) GetItem(_ context.Context, imei string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[imei]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryStore) SaveItem(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.IMEI] = *item
	return nil
}

func (s *MemoryStore) DeleteItems(_ context.Context, imeis []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range imeis {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ClearItems(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.items))
	s.items = make(map[string]models.InventoryItem)
	return n, nil
}

func (s *MemoryStore) ListItems(_ context.Context, f ItemFilter, limit, offset int) ([]models.InventoryItem, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.InventoryItem
	for _, item := range s.items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Grade != "" && item.Grade != f.Grade {
			continue
		}
		if f.Model != "" && item.Model != f.Model {
			continue
		}
		if f.Batch != "" && item.Batch != f.Batch {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.Compare(matched[i].IMEI, matched[j].IMEI) < 0
	})

	total := int64(len(matched))
	return page(matched, limit, offset), total, nil
}

func (s *MemoryStore) AllItems(_ context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	return items, nil
}

func (s *MemoryStore) CountItems(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *MemoryStore) AppendMovement(_ context.Context, m *models.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m.Seq = s.seq
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.movements = append(s.movements, *m)
	return nil
}

func (s *MemoryStore) QueryMovements(_ context.Context, f MovementFilter, limit, offset int) (*MovementPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterMovements(f)
	total := int64(len(matched))
	pg := page(matched, limit, offset)
	return &MovementPage{
		Movements: pg,
		Total:     total,
		HasMore:   int64(offset+len(pg)) < total,
	}, nil
}

func (s *MemoryStore) LastMovement(_ context.Context, imei string) (*models.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterMovements(MovementFilter{IMEI: imei})
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	m := matched[0]
	return &m, nil
}

// filterMovements returns matches newest-first (performedAt desc, seq desc).
// Caller must hold the read lock.
func (s *MemoryStore) filterMovements(f MovementFilter) []models.Movement {
	var matched []models.Movement
	for _, m := range s.movements {
		if f.Type != "" && m.MovementType != f.Type {
			continue
		}
		if f.IMEI != "" && m.IMEI != f.IMEI {
			continue
		}
		if f.Source != "" && m.Source != f.Source {
			continue
		}
		if f.From != nil && m.PerformedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.PerformedAt.After(*f.To) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PerformedAt.Equal(matched[j].PerformedAt) {
			return matched[i].Seq > matched[j].Seq
		}
		return matched[i].PerformedAt.After(matched[j].PerformedAt)
	})
	return matched
}

func (s *MemoryStore) CreateSyncRun(_ context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *MemoryStore) UpdateSyncRun(_ context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i] = *run
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) LatestSyncRun(_ context.Context) (*models.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, ErrNotFound
	}
	latest := s.runs[0]
	for _, r := range s.runs[1:] {
		if r.StartedAt.After(latest.StartedAt) {
			latest = r
		}
	}
	return &latest, nil
}

func (s *MemoryStore) ActiveSyncRun(_ context.Context) (*models.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].Status == models.SyncInProgress {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FailStaleRuns(_ context.Context, olderThan time.Duration, message string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	now := time.Now().UTC()
	var n int64
	for i := range s.runs {
		if s.runs[i].Status == models.SyncInProgress && s.runs[i].StartedAt.Before(cutoff) {
			s.runs[i].Status = models.SyncFailed
			s.runs[i].ErrorMessage = message
			s.runs[i].CompletedAt = &now
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) AppendActivity(_ context.Context, e *models.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activitySeq++
	e.ID = s.activitySeq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.activity = append(s.activity, *e)
	return nil
}

func (s *MemoryStore) ListActivity(_ context.Context, limit, offset int) ([]models.ActivityLogEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]models.ActivityLogEntry, len(s.activity))
	copy(entries, s.activity)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	total := int64(len(entries))
	return page(entries, limit, offset), total, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// page applies limit/offset to a pre-sorted slice
func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

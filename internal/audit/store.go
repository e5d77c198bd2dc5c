package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Filter struct {
	Action   string
	EntityID *uint
	Limit    int
}

type Store interface {
	Save(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f Filter) ([]models.AuditLog, error)
}

const defaultListLimit = 100

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.EntityID != nil {
		query = query.Where("entity_id = ?", *f.EntityID)
	}

	var logs []models.AuditLog
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitOrDefault(f.Limit)).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// MemoryStore backs the in-process store driver and tests.
type MemoryStore struct {
	mu     sync.Mutex
	logs   []models.AuditLog
	nextID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.AuditLog{}
	for _, l := range s.logs {
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.EntityID != nil && (l.EntityID == nil || *l.EntityID != *f.EntityID) {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit := limitOrDefault(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func limitOrDefault(n int) int {
	if n <= 0 || n > 500 {
		return defaultListLimit
	}
	return n
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

package records

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and the memory storage provider.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*Record),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Get(_ context.Context, projectID uuid.UUID, milestoneID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordKey(projectID, milestoneID)]
	if !ok {
		return nil, &NotFoundError{Resource: "milestone_record", Key: recordKey(projectID, milestoneID)}
	}
	return Clone(rec), nil
}

func (m *MemoryRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*Record, error) {
	return m.filter(func(rec *Record) bool { return rec.ProjectID == projectID }), nil
}

func (m *MemoryRepository) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]*Record, error) {
	return m.filter(func(rec *Record) bool { return rec.CreatorID == creatorID }), nil
}

func (m *MemoryRepository) InsertIfAbsent(_ context.Context, record *Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(record.ProjectID, record.MilestoneID)
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = Clone(record)
	return true, nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(record.ProjectID, record.MilestoneID)
	if _, exists := m.records[key]; !exists {
		return nil, &NotFoundError{Resource: "milestone_record", Key: key}
	}
	m.records[key] = Clone(record)
	return Clone(record), nil
}

func (m *MemoryRepository) UpdateBatch(_ context.Context, batch []*Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range batch {
		key := recordKey(record.ProjectID, record.MilestoneID)
		if _, exists := m.records[key]; !exists {
			return &NotFoundError{Resource: "milestone_record", Key: key}
		}
	}
	for _, record := range batch {
		m.records[recordKey(record.ProjectID, record.MilestoneID)] = Clone(record)
	}
	return nil
}

func (m *MemoryRepository) filter(keep func(*Record) bool) []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0)
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, Clone(rec))
		}
	}
	SortByKey(out)
	return out
}

// SortByKey orders records by their captured sort key, then milestone id.
func SortByKey(list []*Record) {
	slices.SortFunc(list, func(a, b *Record) int {
		if cmp := a.SortKey().Compare(b.SortKey()); cmp != 0 {
			return cmp
		}
		switch {
		case a.MilestoneID < b.MilestoneID:
			return -1
		case a.MilestoneID > b.MilestoneID:
			return 1
		}
		return 0
	})
}

package creators

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryCreatorRepository returns an in-memory creator repository.
func NewMemoryCreatorRepository() *MemoryCreatorRepository {
	return &MemoryCreatorRepository{
		byID:    make(map[uuid.UUID]*Creator),
		byEmail: make(map[string]uuid.UUID),
	}
}

// MemoryCreatorRepository keeps creators in maps guarded by a mutex.
type MemoryCreatorRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Creator
	byEmail map[string]uuid.UUID
}

func (m *MemoryCreatorRepository) Create(_ context.Context, creator *Creator) (*Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := emailKey(creator.Email)
	if _, exists := m.byEmail[email]; exists {
		return nil, ErrDuplicateEmail
	}
	stored := cloneCreator(creator)
	m.byID[stored.ID] = stored
	m.byEmail[email] = stored.ID
	return cloneCreator(stored), nil
}

func (m *MemoryCreatorRepository) Update(_ context.Context, creator *Creator) (*Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[creator.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "creator", Key: creator.ID.String()}
	}
	delete(m.byEmail, emailKey(existing.Email))
	stored := cloneCreator(creator)
	m.byID[stored.ID] = stored
	m.byEmail[emailKey(stored.Email)] = stored.ID
	return cloneCreator(stored), nil
}

func (m *MemoryCreatorRepository) GetByID(_ context.Context, id uuid.UUID) (*Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	creator, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "creator", Key: id.String()}
	}
	return cloneCreator(creator), nil
}

func (m *MemoryCreatorRepository) GetByEmail(_ context.Context, email string) (*Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[emailKey(email)]
	if !ok {
		return nil, &NotFoundError{Resource: "creator", Key: email}
	}
	return cloneCreator(m.byID[id]), nil
}

func (m *MemoryCreatorRepository) List(_ context.Context) ([]*Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Creator, 0, len(m.byID))
	for _, creator := range m.byID {
		out = append(out, cloneCreator(creator))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// NewMemoryProjectRepository returns an in-memory project repository.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{byID: make(map[uuid.UUID]*Project)}
}

// MemoryProjectRepository keeps projects in a map guarded by a mutex.
type MemoryProjectRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Project
}

func (m *MemoryProjectRepository) Create(_ context.Context, project *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneProject(project)
	m.byID[stored.ID] = stored
	return cloneProject(stored), nil
}

func (m *MemoryProjectRepository) Update(_ context.Context, project *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[project.ID]; !ok {
		return nil, &NotFoundError{Resource: "project", Key: project.ID.String()}
	}
	stored := cloneProject(project)
	m.byID[stored.ID] = stored
	return cloneProject(stored), nil
}

func (m *MemoryProjectRepository) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	return cloneProject(project), nil
}

func (m *MemoryProjectRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "project", Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryProjectRepository) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Project
	for _, project := range m.byID {
		if project.CreatorID == creatorID {
			out = append(out, cloneProject(project))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

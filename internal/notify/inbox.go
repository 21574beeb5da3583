package notify

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-onboarding/internal/domain"
)

// InboxItem is an admin-facing work item raised by a notification.
type InboxItem struct {
	bun.BaseModel `bun:"table:admin_inbox,alias:ai"`

	ID          uuid.UUID        `bun:",pk,type:uuid"                json:"id"`
	CreatorID   uuid.UUID        `bun:"creator_id,notnull,type:uuid" json:"creator_id"`
	ProjectID   uuid.UUID        `bun:"project_id,type:uuid"         json:"project_id"`
	MilestoneID string           `bun:"milestone_id,notnull"         json:"milestone_id"`
	Kind        domain.EventKind `bun:"kind,notnull"                 json:"kind"`
	Actor       string           `bun:"actor"                        json:"actor,omitempty"`
	Note        string           `bun:"note"                         json:"note,omitempty"`
	CreatedAt   time.Time        `bun:"created_at,notnull"           json:"created_at"`
	ReadAt      *time.Time       `bun:"read_at,nullzero"             json:"read_at,omitempty"`
}

// InboxRepository stores admin inbox items.
type InboxRepository interface {
	Add(ctx context.Context, item *InboxItem) error
	ListUnread(ctx context.Context) ([]*InboxItem, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
}

// InboxSink turns selected events into admin inbox items.
type InboxSink struct {
	Repository InboxRepository
	// Kinds limits which events raise items; empty means waiting_approval only.
	Kinds []domain.EventKind
}

func (s InboxSink) Name() string { return "inbox" }

func (s InboxSink) Deliver(ctx context.Context, event Event) error {
	if s.Repository == nil {
		return ErrSinkUnavailable
	}
	kinds := s.Kinds
	if len(kinds) == 0 {
		kinds = []domain.EventKind{domain.EventWaitingApproval}
	}
	if !slices.Contains(kinds, event.Kind) {
		return nil
	}
	return s.Repository.Add(ctx, &InboxItem{
		ID:          uuid.New(),
		CreatorID:   event.CreatorID,
		ProjectID:   event.ProjectID,
		MilestoneID: event.MilestoneID,
		Kind:        event.Kind,
		Actor:       event.Actor,
		Note:        event.Note,
		CreatedAt:   event.OccurredAt,
	})
}

// MemoryInbox keeps inbox items in memory.
type MemoryInbox struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*InboxItem
}

// NewMemoryInbox constructs an empty in-memory inbox.
func NewMemoryInbox() *MemoryInbox {
	return &MemoryInbox{items: make(map[uuid.UUID]*InboxItem)}
}

func (m *MemoryInbox) Add(_ context.Context, item *InboxItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *item
	m.items[copied.ID] = &copied
	return nil
}

func (m *MemoryInbox) ListUnread(context.Context) ([]*InboxItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*InboxItem
	for _, item := range m.items {
		if item.ReadAt == nil {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryInbox) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return &NotFoundError{Resource: "inbox_item", Key: id.String()}
	}
	readAt := at
	item.ReadAt = &readAt
	return nil
}

// BunInbox stores inbox items in the admin_inbox table.
type BunInbox struct {
	db bun.IDB
}

// NewBunInbox constructs a bun-backed inbox.
func NewBunInbox(db bun.IDB) *BunInbox {
	return &BunInbox{db: db}
}

func (b *BunInbox) Add(ctx context.Context, item *InboxItem) error {
	_, err := b.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (b *BunInbox) ListUnread(ctx context.Context) ([]*InboxItem, error) {
	var items []*InboxItem
	err := b.db.NewSelect().
		Model(&items).
		Where("?TableAlias.read_at IS NULL").
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	return items, err
}

func (b *BunInbox) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := b.db.NewUpdate().
		Model((*InboxItem)(nil)).
		Set("read_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "inbox_item", Key: id.String()}
	}
	return nil
}

// NotFoundError is returned when an inbox item cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " \"" + e.Key + "\" not found"
}

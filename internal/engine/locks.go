package engine

import (
	"sync"

	"github.com/google/uuid"
)

// creatorLocks serializes operations per creator. Entries are dropped once unused.
type creatorLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newCreatorLocks() *creatorLocks {
	return &creatorLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

func (l *creatorLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}

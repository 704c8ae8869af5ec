// Package memory provides an in-memory session store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/store"
)

var _ store.Store = (*Store)(nil)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	sessions map[string]store.Record
	now      func() time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]store.Record),
		now:      time.Now,
	}
}

// Create stores a new session.
func (m *Store) Create(_ context.Context, id string, game []byte, s engine.GameState) error {
	rec, err := store.NewRecord(id, s, m.now())
	if err != nil {
		return err
	}
	rec.Game = append([]byte(nil), game...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return store.ErrAlreadyExists
	}
	m.sessions[id] = rec
	return nil
}

// Save replaces the state of an existing session.
func (m *Store) Save(_ context.Context, id string, s engine.GameState) error {
	rec, err := store.NewRecord(id, s, m.now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.Game = prev.Game
	m.sessions[id] = rec
	return nil
}

// Load returns a copy of the stored record.
func (m *Store) Load(_ context.Context, id string) (store.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.sessions[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	rec.Game = append([]byte(nil), rec.Game...)
	rec.Blob = append([]byte(nil), rec.Blob...)
	return rec, nil
}

// Delete removes a session.
func (m *Store) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// List returns session summaries, most recently updated first.
func (m *Store) List(_ context.Context) ([]store.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Summary, 0, len(m.sessions))
	for _, rec := range m.sessions {
		out = append(out, rec.Summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Store) Close() error { return nil }

// internal/store/memory.go
//
// In-memory implementation of the Store interface.
//
// Characteristics:
//   - Sessions keyed by ID in a map guarded by an RWMutex (lookups share,
//     inserts and sweeps are exclusive).
//   - Each session has its own mutex; Update holds it for the whole
//     read-modify-write, so writers to one session are linearized while
//     different sessions proceed in parallel.
//   - Sweep only removes sessions whose lock it can take without waiting.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

type entry struct {
	mu         sync.Mutex
	g          *game.Game
	lastAccess time.Time
	gone       bool // set by Sweep/Delete; a waiter that finds it must not touch g
}

// Memory is an in-memory map-based Store.
type Memory struct {
	mu    sync.RWMutex      // guards games map
	games map[string]*entry // keyed by Game.ID
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{games: make(map[string]*entry), now: time.Now}
}

// Create adds the game to the map.
func (m *Memory) Create(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return ErrExists
	}
	m.games[g.ID] = &entry{g: g.Clone(), lastAccess: m.now()}
	return nil
}

// Get looks up a game by ID and returns a copy.
func (m *Memory) Get(_ context.Context, id string) (*game.Game, error) {
	e, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	e.lastAccess = m.now()
	return e.g.Clone(), nil
}

// Update applies fn to a copy of the game under the session lock.
func (m *Memory) Update(_ context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	e, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	next := e.g.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.g = next
	e.lastAccess = m.now()
	return next.Clone(), nil
}

// Delete removes a game.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.games[id]
	if ok {
		delete(m.games, id)
	}
	m.mu.Unlock()
	if !ok {
		return notFound(id)
	}
	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
	return nil
}

// Sweep removes idle sessions, skipping any that are locked.
func (m *Memory) Sweep(_ context.Context, maxIdle time.Duration) (int, error) {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.games {
		if !e.mu.TryLock() {
			continue // in flight
		}
		if e.lastAccess.Before(cutoff) {
			e.gone = true
			delete(m.games, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed, nil
}

// Count returns the number of live sessions.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// lock finds the entry and returns it locked.
func (m *Memory) lock(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.games[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	e.mu.Lock()
	if e.gone {
		e.mu.Unlock()
		return nil, notFound(id)
	}
	return e, nil
}

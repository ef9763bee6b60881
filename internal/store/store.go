// internal/store/store.go
//
// Persistence interface for live game sessions.
//
// Implementations:
//   - memory.go: process-local map with one mutex per session.
//   - redis.go:  shared store with optimistic per-key transactions.
//
// Every implementation serializes Update calls for the same session, so two
// concurrent guesses can never both start from the same guess count.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

// ErrExists is returned by Create when the id is already taken.
var ErrExists = errors.New("store: session already exists")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Create registers a new session. Returns ErrExists on id collision.
	Create(ctx context.Context, g *game.Game) error

	// Get returns a snapshot of the session. Mutating the result has no
	// effect on the stored session.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on a private copy of the session while holding the
	// session's write lock, and commits the copy only if fn returns nil.
	// The committed state is returned as a snapshot.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that need explicit expiry.
type Sweeper interface {
	// Sweep removes sessions idle for longer than maxIdle and reports how
	// many were removed. Sessions with an operation in flight are skipped.
	Sweep(ctx context.Context, maxIdle time.Duration) (int, error)
}

func notFound(id string) error {
	return game.Errorf(game.KindNotFound, "session %q not found", id)
}

/*
Package store defines persistence for game sessions.

PURPOSE:
  A session is one player's game: an id plus the latest GameState blob.
  The engine never touches storage; the host saves the state returned by
  every command and restores it with engine.Restore on the next request.

CONTRACT:
  - Create stores the game definition and the first state. It fails with
    ErrAlreadyExists if the id is taken.
  - Save replaces the state of an existing session, or returns ErrNotFound.
    The game definition never changes after Create.
  - Load returns the record (definition + state blob), or ErrNotFound.
  - Delete is idempotent.
  - List returns lightweight summaries, most recently updated first.

  Both blobs are opaque to every implementation. Summaries (day, stage,
  accounts remaining) are denormalized at save time so listing never
  decodes blobs.

IMPLEMENTATIONS:
  - store/memory:   In-memory map for tests and development
  - store/sqlite:   SQLite, with an append-only payment audit table
  - store/postgres: PostgreSQL via pgx, schema managed by golang-migrate
  - store/redis:    Redis via go-redis, with optional expiry

SEE ALSO:
  - engine/codec.go: Marshal, Unmarshal, Restore
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/avalanche-engine/engine"
)

var (
	// ErrNotFound is returned when a session id has no stored state.
	ErrNotFound = errors.New("session not found")

	// ErrAlreadyExists is returned by Create for a taken id.
	ErrAlreadyExists = errors.New("session already exists")
)

// Store persists game sessions.
type Store interface {
	Create(ctx context.Context, id string, game []byte, s engine.GameState) error
	Save(ctx context.Context, id string, s engine.GameState) error
	Load(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// Summary describes a stored session without its blob.
type Summary struct {
	ID                string       `json:"id"`
	CurrentDay        engine.Day   `json:"current_day"`
	Stage             engine.Stage `json:"stage"`
	AccountsRemaining int          `json:"accounts_remaining"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Record is one stored session.
type Record struct {
	Summary
	Game []byte // game definition JSON, written once by Create
	Blob []byte // engine.Marshal output
}

// NewRecord encodes a state for storage. Game is left for the caller.
func NewRecord(id string, s engine.GameState, now time.Time) (Record, error) {
	blob, err := engine.Marshal(s)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode session %s: %w", id, err)
	}
	return Record{
		Summary: Summary{
			ID:                id,
			CurrentDay:        s.CurrentDay,
			Stage:             s.Stage,
			AccountsRemaining: engine.AccountsRemaining(s),
			UpdatedAt:         now.UTC(),
		},
		Blob: blob,
	}, nil
}

/*
codec.go - GameState serialization

PURPOSE:
  A GameState is the single unit of persistence. The host application
  stores it as an opaque, versionless JSON blob and restores it on the next
  start. The engine never touches storage itself.

RECOVERY:
  Restore never fails. A missing, undecodable, or structurally invalid blob
  is a recovered condition: it is logged and a fresh game is returned.
  A blob that passes the structural check is trusted as-is; nothing is
  recomputed beyond rehydration.

SEE ALSO:
  - store/: Persistence adapters that carry the blob
*/
package engine

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a state as a JSON blob.
func Marshal(s GameState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a blob produced by Marshal. Blobs without accounts, with
// a day counter below 1, or with an unknown stage are rejected with
// ErrCorruptState.
func Unmarshal(b []byte) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(b, &s); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if len(s.Accounts) == 0 || s.CurrentDay < 1 {
		return GameState{}, fmt.Errorf("%w: missing accounts or day counter", ErrCorruptState)
	}
	switch s.Stage {
	case StageEarning, StagePaying, StageComplete:
	default:
		return GameState{}, fmt.Errorf("%w: unknown stage %q", ErrCorruptState, s.Stage)
	}
	if s.Ledger.PayoffMilestones == nil {
		s.Ledger.PayoffMilestones = map[AccountID]PayoffMilestone{}
	}
	return s, nil
}

// Restore decodes a blob, falling back to a fresh game when the blob is
// empty or corrupt.
func (e *Engine) Restore(b []byte) GameState {
	if len(b) == 0 {
		return e.NewGame()
	}
	s, err := Unmarshal(b)
	if err != nil {
		e.Logger.Warn().Err(err).Msg("failed to restore game state, starting fresh")
		return e.NewGame()
	}
	return s
}

/*
Package sqlite provides a SQLite-backed session store.

PURPOSE:
  Implements store.Store using SQLite, and mirrors every game's payment log
  into an append-only audit table so payment history can be queried with
  SQL without decoding blobs.

KEY TABLES:
  game_sessions: Game definition and latest state blob per session, plus
                 denormalized summary
                 columns (current_day, stage, accounts_remaining) and the
                 mirroring cursor (round, logged).
  payment_log:   Append-only copy of PaymentLogEntry rows, keyed by
                 (session_id, round, seq). Never updated.

MIRRORING:
  On each Save the PaymentLog entries past the session's cursor are
  inserted in the same transaction as the blob update. A PaymentLog
  shorter than the cursor means the game was reset: the round is bumped
  and mirroring restarts at seq 0, so earlier rounds stay queryable.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  st, err := sqlite.New("./data/avalanche.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/store"
)

var _ store.Store = (*Store)(nil)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_sessions (
		id TEXT PRIMARY KEY,
		game_json TEXT NOT NULL,
		state_json TEXT NOT NULL,
		current_day INTEGER NOT NULL,
		stage TEXT NOT NULL,
		accounts_remaining INTEGER NOT NULL,
		round INTEGER NOT NULL DEFAULT 0,
		logged INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_game_sessions_updated
		ON game_sessions(updated_at DESC);

	-- Payment audit trail (append-only)
	CREATE TABLE IF NOT EXISTS payment_log (
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		account_id TEXT NOT NULL,
		amount_paid TEXT NOT NULL,
		interest_accrued TEXT NOT NULL,
		resulting_balance TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (session_id, round, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_payment_log_account
		ON payment_log(session_id, account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION STORE (store.Store interface)
// =============================================================================

// Create inserts a new session.
func (s *Store) Create(ctx context.Context, id string, game []byte, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, time.Now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := rec.UpdatedAt.Format(timeLayout)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO game_sessions
			(id, game_json, state_json, current_day, stage, accounts_remaining, round, logged, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		`, id, string(game), string(rec.Blob), rec.CurrentDay, rec.Stage, rec.AccountsRemaining, now, now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return store.ErrAlreadyExists
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return s.mirrorPayments(ctx, tx, id, state.Ledger.PaymentLog, now)
	})
}

// Save replaces the session blob and mirrors new payments.
func (s *Store) Save(ctx context.Context, id string, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, time.Now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := rec.UpdatedAt.Format(timeLayout)
		res, err := tx.ExecContext(ctx, `
			UPDATE game_sessions
			SET state_json = ?, current_day = ?, stage = ?, accounts_remaining = ?, updated_at = ?
			WHERE id = ?
		`, string(rec.Blob), rec.CurrentDay, rec.Stage, rec.AccountsRemaining, now, id)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return s.mirrorPayments(ctx, tx, id, state.Ledger.PaymentLog, now)
	})
}

// Load returns the stored record.
func (s *Store) Load(ctx context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec             store.Record
		game, blob, upd string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, game_json, state_json, current_day, stage, accounts_remaining, updated_at
		FROM game_sessions WHERE id = ?
	`, id).Scan(&rec.ID, &game, &blob, &rec.CurrentDay, &rec.Stage, &rec.AccountsRemaining, &upd)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	rec.Game = []byte(game)
	rec.Blob = []byte(blob)
	rec.UpdatedAt, _ = time.Parse(timeLayout, upd)
	return rec, nil
}

// Delete removes the session blob. The payment audit trail is kept.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM game_sessions WHERE id = ?", id)
	return err
}

// List returns session summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, current_day, stage, accounts_remaining, updated_at
		FROM game_sessions
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var (
			sum       store.Summary
			updatedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.CurrentDay, &sum.Stage, &sum.AccountsRemaining, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// =============================================================================
// PAYMENT AUDIT TRAIL
// =============================================================================

// PaymentRecord is one mirrored payment.
type PaymentRecord struct {
	SessionID  string    `json:"session_id"`
	Round      int       `json:"round"`
	Seq        int       `json:"seq"`
	RecordedAt time.Time `json:"recorded_at"`
	engine.PaymentLogEntry
}

// mirrorPayments appends log entries past the session's cursor.
func (s *Store) mirrorPayments(ctx context.Context, tx *sql.Tx, id string, log []engine.PaymentLogEntry, now string) error {
	var round, logged int
	err := tx.QueryRowContext(ctx,
		"SELECT round, logged FROM game_sessions WHERE id = ?", id,
	).Scan(&round, &logged)
	if err != nil {
		return fmt.Errorf("failed to read payment cursor: %w", err)
	}

	if len(log) < logged {
		round++
		logged = 0
	}
	if len(log) == logged {
		_, err = tx.ExecContext(ctx,
			"UPDATE game_sessions SET round = ?, logged = ? WHERE id = ?", round, logged, id)
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO payment_log
		(session_id, round, seq, day, account_id, amount_paid, interest_accrued, resulting_balance, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, round, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare payment insert: %w", err)
	}
	defer stmt.Close()

	for seq := logged; seq < len(log); seq++ {
		p := log[seq]
		if _, err := stmt.ExecContext(ctx, id, round, seq, p.Day, p.AccountID,
			p.AmountPaid.String(), p.InterestAccrued.String(), p.ResultingBalance.String(), now,
		); err != nil {
			return fmt.Errorf("failed to mirror payment: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE game_sessions SET round = ?, logged = ? WHERE id = ?", round, len(log), id)
	return err
}

// PaymentHistory returns the mirrored payments of a session across all
// rounds, oldest first. Pass an empty accountID for every account.
func (s *Store) PaymentHistory(ctx context.Context, sessionID string, accountID engine.AccountID) ([]PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT session_id, round, seq, day, account_id, amount_paid, interest_accrued, resulting_balance, recorded_at
		FROM payment_log
		WHERE session_id = ? AND (? = '' OR account_id = ?)
		ORDER BY round ASC, seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, string(accountID), string(accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var out []PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanPayment(rows *sql.Rows) (PaymentRecord, error) {
	var (
		rec        PaymentRecord
		amountPaid string
		interest   string
		resulting  string
		recordedAt string
	)

	err := rows.Scan(
		&rec.SessionID, &rec.Round, &rec.Seq, &rec.Day, &rec.AccountID,
		&amountPaid, &interest, &resulting, &recordedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan payment: %w", err)
	}

	rec.AmountPaid = engine.MustParseMoney(amountPaid)
	rec.InterestAccrued = engine.MustParseMoney(interest)
	rec.ResultingBalance = engine.MustParseMoney(resulting)
	rec.RecordedAt, _ = time.Parse(timeLayout, recordedAt)
	return rec, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// withTx runs fn in a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payment_log", "game_sessions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

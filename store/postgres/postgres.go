// Package postgres stores game sessions in PostgreSQL through the pgx
// database/sql driver. The schema is versioned with golang-migrate from
// the embedded migrations directory.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

var _ store.Store = (*Store)(nil)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to dsn, applies pending migrations and returns a store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Migrate applies every embedded migration not yet recorded in db.
func Migrate(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, id string, game []byte, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_sessions (id, game_json, state_json, current_day, stage, accounts_remaining, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, rec.ID, game, rec.Blob, int(rec.CurrentDay), string(rec.Stage), rec.AccountsRemaining, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, id string, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, s.now())
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET state_json = $2, current_day = $3, stage = $4, accounts_remaining = $5, updated_at = $6
		WHERE id = $1
	`, rec.ID, rec.Blob, int(rec.CurrentDay), string(rec.Stage), rec.AccountsRemaining, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (store.Record, error) {
	var (
		rec   store.Record
		day   int
		stage string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, game_json, state_json, current_day, stage, accounts_remaining, updated_at
		FROM game_sessions WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Game, &rec.Blob, &day, &stage, &rec.AccountsRemaining, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("select session: %w", err)
	}
	rec.CurrentDay = engine.Day(day)
	rec.Stage = engine.Stage(stage)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, current_day, stage, accounts_remaining, updated_at
		FROM game_sessions
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var (
			sum   store.Summary
			day   int
			stage string
		)
		if err := rows.Scan(&sum.ID, &day, &stage, &sum.AccountsRemaining, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.CurrentDay = engine.Day(day)
		sum.Stage = engine.Stage(stage)
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

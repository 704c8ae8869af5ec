// Package redis stores game sessions as Redis hashes. Sessions can be
// given a time-to-live so abandoned games expire on their own.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/store"
)

const keyPrefix = "avalanche:game:"

// Hash fields of one session.
const (
	fieldGame      = "game"
	fieldState     = "state"
	fieldDay       = "current_day"
	fieldStage     = "stage"
	fieldRemaining = "accounts_remaining"
	fieldUpdated   = "updated_at"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// New connects to addr. A zero ttl keeps sessions forever; otherwise
// every write pushes the expiry out again.
func New(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{client: rdb, ttl: ttl, now: time.Now}, nil
}

func key(id string) string { return keyPrefix + id }

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Create(ctx context.Context, id string, game []byte, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, s.now())
	if err != nil {
		return err
	}

	created, err := s.client.HSetNX(ctx, key(id), fieldGame, game).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created {
		return store.ErrAlreadyExists
	}
	return s.write(ctx, rec)
}

// Save replaces the state of an existing session. A session that expired
// is reported as ErrNotFound.
func (s *Store) Save(ctx context.Context, id string, state engine.GameState) error {
	rec, err := store.NewRecord(id, state, s.now())
	if err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return s.write(ctx, rec)
}

func (s *Store) write(ctx context.Context, rec store.Record) error {
	k := key(rec.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			fieldState, rec.Blob,
			fieldDay, int(rec.CurrentDay),
			fieldStage, string(rec.Stage),
			fieldRemaining, rec.AccountsRemaining,
			fieldUpdated, rec.UpdatedAt.UnixNano(),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (store.Record, error) {
	vals, err := s.client.HMGet(ctx, key(id), fieldGame, fieldState, fieldDay, fieldStage, fieldRemaining, fieldUpdated).Result()
	if err != nil {
		return store.Record{}, fmt.Errorf("load session: %w", err)
	}
	game, okGame := vals[0].(string)
	blob, okBlob := vals[1].(string)
	if !okGame || !okBlob {
		return store.Record{}, store.ErrNotFound
	}

	sum, ok := summaryFrom(id, vals[2:])
	if !ok {
		return store.Record{}, fmt.Errorf("load session %s: malformed summary", id)
	}
	return store.Record{Summary: sum, Game: []byte(game), Blob: []byte(blob)}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, key(id)).Err()
}

// List scans every session key. Sessions that expire mid-scan are skipped.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	var out []store.Summary

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		vals, err := s.client.HMGet(ctx, k, fieldDay, fieldStage, fieldRemaining, fieldUpdated).Result()
		if err != nil {
			return nil, fmt.Errorf("read session %s: %w", k, err)
		}
		sum, ok := summaryFrom(k[len(keyPrefix):], vals)
		if !ok {
			continue
		}
		out = append(out, sum)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func summaryFrom(id string, vals []interface{}) (store.Summary, bool) {
	fields := make([]string, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			return store.Summary{}, false
		}
		fields[i] = str
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return store.Summary{}, false
	}
	remaining, err := strconv.Atoi(fields[2])
	if err != nil {
		return store.Summary{}, false
	}
	updated, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return store.Summary{}, false
	}

	return store.Summary{
		ID:                id,
		CurrentDay:        engine.Day(day),
		Stage:             engine.Stage(fields[1]),
		AccountsRemaining: remaining,
		UpdatedAt:         time.Unix(0, updated).UTC(),
	}, true
}

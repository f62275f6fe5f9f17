package postgres

import (
	"context"
	"errors"
	"fmt"

	"cookoff-scoreboard/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store keeps scoreboard documents as JSONB rows in the kv_store table
// created by the migrations package.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.StorageError{Op: domain.StorageRead, Key: key, Err: fmt.Errorf("load %s: %w", key, err)}
	}
	return raw, true, nil
}

// Set upserts the document. Postgres rejects values that are not valid JSON.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value))
	if err != nil {
		return &domain.StorageError{Op: domain.StorageWrite, Key: key, Err: fmt.Errorf("save %s: %w", key, err)}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE key=$1`, key); err != nil {
		return &domain.StorageError{Op: domain.StorageDelete, Key: key, Err: fmt.Errorf("delete %s: %w", key, err)}
	}
	return nil
}

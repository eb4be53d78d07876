package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	errs "opening_tree/internal/errors"
)

type SqliteSessionStore struct {
	db *sql.DB
}

// NewSqliteSessionStore expects the sessions table created by
// adapters.AdapterSqlite.
func NewSqliteSessionStore(db *sql.DB) *SqliteSessionStore {
	return &SqliteSessionStore{db: db}
}

func (s *SqliteSessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM sessions WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("select session %s: %w", key, err)
	}
	return payload, nil
}

func (s *SqliteSessionStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", key, err)
	}
	return nil
}

func (s *SqliteSessionStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

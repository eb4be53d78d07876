package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

type AdapterSqlite struct {
	db  *sql.DB
	cfg *bootstrap.Config
	log *zap.SugaredLogger
}

func NewAdapterSqlite(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterSqlite {
	return &AdapterSqlite{
		cfg: cfg,
		log: log,
	}
}

func (a *AdapterSqlite) Init(ctx context.Context) error {
	if dir := filepath.Dir(a.cfg.SqlitePath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create sqlite directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", a.cfg.SqlitePath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect sqlite: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err = db.ExecContext(ctx, sessionsSchema); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}
	a.db = db

	a.log.Infof("sqlite opened at %s", a.cfg.SqlitePath)
	return nil
}

func (a *AdapterSqlite) GetDB() *sql.DB {
	return a.db
}

func (a *AdapterSqlite) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

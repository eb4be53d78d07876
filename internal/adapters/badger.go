package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
)

// AdapterBadger opens the embedded store used by default for sessions.
type AdapterBadger struct {
	db  *badger.DB
	cfg *bootstrap.Config
	log *zap.SugaredLogger
}

func NewAdapterBadger(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterBadger {
	return &AdapterBadger{
		cfg: cfg,
		log: log,
	}
}

func (a *AdapterBadger) Init(ctx context.Context) error {
	var opts badger.Options
	if a.cfg.BadgerInMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if a.cfg.BadgerPath == "" {
			return errors.New("BADGER_PATH is required unless BADGER_IN_MEMORY is set")
		}
		if err := os.MkdirAll(a.cfg.BadgerPath, 0750); err != nil {
			return fmt.Errorf("create badger directory %s: %w", a.cfg.BadgerPath, err)
		}
		opts = badger.DefaultOptions(a.cfg.BadgerPath).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{a.log})

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger: %w", err)
	}
	a.db = db

	a.log.Infof("badger opened (in memory: %t, path: %s)", a.cfg.BadgerInMemory, a.cfg.BadgerPath)
	return nil
}

func (a *AdapterBadger) GetDB() *badger.DB {
	return a.db
}

func (a *AdapterBadger) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// badgerLogger routes badger's internal logging into zap. Info and debug
// chatter is dropped to debug level.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

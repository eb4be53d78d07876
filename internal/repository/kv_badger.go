package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	errs "opening_tree/internal/errors"
)

var badgerKeyPrefix = []byte("session/")

type BadgerSessionStore struct {
	db *badger.DB
}

func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

func badgerKey(key string) []byte {
	return append(append([]byte{}, badgerKeyPrefix...), key...)
}

func (b *BadgerSessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *BadgerSessionStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key), value)
	})
}

func (b *BadgerSessionStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
}

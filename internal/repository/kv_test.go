package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opening_tree/internal/adapters"
	"opening_tree/internal/bootstrap"
	errs "opening_tree/internal/errors"
)

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

func exerciseStore(t *testing.T, store kvStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, store.Set(ctx, "s1", []byte(`{"version":1}`)))
	require.NoError(t, store.Set(ctx, "s2", []byte("other")))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":1}`), got)

	require.NoError(t, store.Set(ctx, "s1", []byte("replaced")))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), got)

	require.NoError(t, store.Remove(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, store.Remove(ctx, "s1"))

	got, err = store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), got)
}

func TestBadgerSessionStore(t *testing.T) {
	adapter := adapters.NewAdapterBadger(&bootstrap.Config{BadgerInMemory: true}, zap.NewNop().Sugar())
	require.NoError(t, adapter.Init(context.Background()))
	t.Cleanup(func() { _ = adapter.Close(context.Background()) })

	store := NewBadgerSessionStore(adapter.GetDB())
	exerciseStore(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Get(ctx, "s2")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerSessionStoreOnDisk(t *testing.T) {
	cfg := &bootstrap.Config{BadgerPath: filepath.Join(t.TempDir(), "badger")}
	adapter := adapters.NewAdapterBadger(cfg, zap.NewNop().Sugar())
	require.NoError(t, adapter.Init(context.Background()))
	store := NewBadgerSessionStore(adapter.GetDB())
	require.NoError(t, store.Set(context.Background(), "s1", []byte("persisted")))
	require.NoError(t, adapter.Close(context.Background()))

	reopened := adapters.NewAdapterBadger(cfg, zap.NewNop().Sugar())
	require.NoError(t, reopened.Init(context.Background()))
	t.Cleanup(func() { _ = reopened.Close(context.Background()) })

	got, err := NewBadgerSessionStore(reopened.GetDB()).Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestSqliteSessionStore(t *testing.T) {
	cfg := &bootstrap.Config{SqlitePath: filepath.Join(t.TempDir(), "nested", "sessions.db")}
	adapter := adapters.NewAdapterSqlite(cfg, zap.NewNop().Sugar())
	require.NoError(t, adapter.Init(context.Background()))
	t.Cleanup(func() { _ = adapter.Close(context.Background()) })

	exerciseStore(t, NewSqliteSessionStore(adapter.GetDB()))
}

package disk

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mkovalev/go-layer-cache/config"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *clock.Mock, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")
	cfg := &config.Cache{
		Disk: &config.DiskCfg{Path: path, TTL: ttl, SweepsPerSec: 100},
	}
	cfg.AdjustConfig()

	mock := clock.NewMock()
	mock.Set(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := New(cfg, slog.Default(), mock)
	require.NoError(t, s.Open(ctx))
	t.Cleanup(func() { _ = s.Close() })

	return s, mock, path
}

// TestStore_SetGet round-trips a record through the general collection.
func TestStore_SetGet(t *testing.T) {
	s, _, _ := newTestStore(t, 24*time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", []byte(`{"v":1}`), "general"))

	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	require.JSONEq(t, `{"v":1}`, string(got))
	require.Equal(t, 1, s.Len())
}

// TestStore_GetMissing misses on unknown keys.
func TestStore_GetMissing(t *testing.T) {
	s, _, _ := newTestStore(t, 24*time.Hour)

	got, ok := s.Get(context.Background(), "nope")
	require.False(t, ok)
	require.Nil(t, got)
}

// TestStore_LazyTTLExpiry drops an expired record at read time.
func TestStore_LazyTTLExpiry(t *testing.T) {
	s, mock, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", []byte(`"v"`), "general"))

	mock.Add(time.Hour + time.Minute)

	_, ok := s.Get(ctx, "k")
	require.False(t, ok)
	require.Equal(t, 0, s.Len(), "expired record must be removed")
}

// TestStore_Delete removes a record and reports whether one existed.
func TestStore_Delete(t *testing.T) {
	s, _, _ := newTestStore(t, 24*time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", []byte(`"v"`), "general"))
	require.True(t, s.Delete(ctx, "k"))
	require.False(t, s.Delete(ctx, "k"))
	require.Equal(t, 0, s.Len())
}

// TestStore_Cleanup removes only records older than the TTL cutoff.
func TestStore_Cleanup(t *testing.T) {
	s, mock, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "old-1", []byte(`"v"`), "general"))
	require.True(t, s.Set(ctx, "old-2", []byte(`"v"`), "general"))

	mock.Add(2 * time.Hour)
	require.True(t, s.Set(ctx, "fresh", []byte(`"v"`), "general"))

	// the write above also kicked a background sweep, so the explicit call
	// may find some or all of the expired records already gone
	removed, err := s.Cleanup(ctx)
	require.NoError(t, err)
	require.LessOrEqual(t, removed, 2)
	require.Equal(t, 1, s.Len())

	_, ok := s.Get(ctx, "fresh")
	require.True(t, ok)
}

// TestStore_OverwriteKeepsSingleIndexEntry overwrites a key and verifies
// cleanup does not resurrect or double-count stale index entries.
func TestStore_OverwriteKeepsSingleIndexEntry(t *testing.T) {
	s, mock, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "k", []byte(`"first"`), "general"))
	mock.Add(30 * time.Minute)
	require.True(t, s.Set(ctx, "k", []byte(`"second"`), "general"))

	// past the first write's deadline, within the second's
	mock.Add(45 * time.Minute)

	removed, err := s.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, removed)

	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	require.JSONEq(t, `"second"`, string(got))
}

// TestStore_PersistsAcrossReopen survives a close and reopen of the store
// file.
func TestStore_PersistsAcrossReopen(t *testing.T) {
	s, _, path := newTestStore(t, 24*time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "durable", []byte(`"v"`), "general"))
	require.NoError(t, s.Close())

	cfg := &config.Cache{
		Disk: &config.DiskCfg{Path: path, TTL: 24 * time.Hour, SweepsPerSec: 100},
	}
	cfg.AdjustConfig()

	mock := clock.NewMock()
	mock.Set(time.Now())

	reopened := New(cfg, slog.Default(), mock)
	require.NoError(t, reopened.Open(context.Background()))
	defer reopened.Close()

	got, ok := reopened.Get(ctx, "durable")
	require.True(t, ok)
	require.JSONEq(t, `"v"`, string(got))
}

// TestStore_OpenFailure reports an error when the store file cannot be
// created.
func TestStore_OpenFailure(t *testing.T) {
	cfg := &config.Cache{
		Disk: &config.DiskCfg{Path: filepath.Join(t.TempDir(), "missing", "cache.db")},
	}
	cfg.AdjustConfig()

	s := New(cfg, slog.Default(), clock.NewMock())
	require.Error(t, s.Open(context.Background()))

	// a store that failed to open degrades to miss/false, never panics
	_, ok := s.Get(context.Background(), "k")
	require.False(t, ok)
	require.False(t, s.Set(context.Background(), "k", []byte(`"v"`), "general"))
}

// TestStore_BackgroundSweep verifies a write schedules an observable sweep
// that removes expired records.
func TestStore_BackgroundSweep(t *testing.T) {
	s, mock, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.True(t, s.Set(ctx, "old", []byte(`"v"`), "general"))
	mock.Add(2 * time.Hour)

	// this write kicks the sweeper, which should reap "old"
	require.True(t, s.Set(ctx, "fresh", []byte(`"v"`), "general"))

	require.Eventually(t, func() bool {
		sweeps, _, removed := s.SweepMetrics()
		return sweeps > 0 && removed >= 1 && s.Len() == 1
	}, 5*time.Second, 10*time.Millisecond, "sweep should reap the expired record")
}

package tests

import (
	"context"
	"testing"

	layercache "github.com/mkovalev/go-layer-cache"
	"github.com/mkovalev/go-layer-cache/tests/help"
	"github.com/stretchr/testify/require"
)

// TestManagerRoundTrip stores and reads values through the full stack.
func TestManagerRoundTrip(t *testing.T) {
	cache := layercache.New(context.Background(), help.Cfg(t.TempDir()), help.Logger())
	defer cache.Close()
	require.True(t, cache.Init(context.Background()))

	ctx := context.Background()
	require.True(t, cache.Set(ctx, "user:1", map[string]any{"name": "ada", "age": float64(36)}))

	got, ok := cache.Get(ctx, "user:1")
	require.True(t, ok)
	require.Equal(t, map[string]any{"name": "ada", "age": float64(36)}, got)

	st := cache.Stats()
	require.True(t, st.Initialized)
	require.True(t, st.ResultCacheAvailable)
	require.Equal(t, int64(1), st.Memory.Entries)
}

// TestManagerDegradedMode keeps the cache serving from memory when the
// persistent tier cannot be opened.
func TestManagerDegradedMode(t *testing.T) {
	cache := layercache.New(context.Background(), help.BrokenDiskCfg(t.TempDir()), help.Logger())
	defer cache.Close()

	require.False(t, cache.Init(context.Background()), "init must fail on a broken store path")

	ctx := context.Background()
	require.True(t, cache.Set(ctx, "k", "v"))

	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", got)

	st := cache.Stats()
	require.False(t, st.Initialized)
	require.False(t, st.ResultCacheAvailable)
}

// TestManagerMemoryOnlyConfig runs without a persistent tier configured.
func TestManagerMemoryOnlyConfig(t *testing.T) {
	cache := layercache.New(context.Background(), help.MemoryOnlyCfg(), help.Logger())
	defer cache.Close()

	require.False(t, cache.Init(context.Background()))

	ctx := context.Background()
	require.True(t, cache.Set(ctx, "k", "v"))

	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", got)
}

// TestManagerSetWithCategory stores a record under a caller category.
func TestManagerSetWithCategory(t *testing.T) {
	cache := layercache.New(context.Background(), help.Cfg(t.TempDir()), help.Logger())
	defer cache.Close()
	require.True(t, cache.Init(context.Background()))

	ctx := context.Background()
	require.True(t, cache.SetWithCategory(ctx, "tpl:hero", map[string]any{"variant": "dark"}, "templates"))

	got, ok := cache.Get(ctx, "tpl:hero")
	require.True(t, ok)
	require.Equal(t, map[string]any{"variant": "dark"}, got)
}

// TestManagerDelete removes a key from every tier it reached.
func TestManagerDelete(t *testing.T) {
	cache := layercache.New(context.Background(), help.Cfg(t.TempDir()), help.Logger())
	defer cache.Close()
	require.True(t, cache.Init(context.Background()))

	ctx := context.Background()
	require.True(t, cache.Set(ctx, "k", "v"))
	require.True(t, cache.Delete(ctx, "k"))

	_, ok := cache.Get(ctx, "k")
	require.False(t, ok)
	require.False(t, cache.Delete(ctx, "k"))
}

// TestManagerClear leaves the memory tier empty.
func TestManagerClear(t *testing.T) {
	cache := layercache.New(context.Background(), help.Cfg(t.TempDir()), help.Logger())
	defer cache.Close()
	require.True(t, cache.Init(context.Background()))

	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.True(t, cache.Set(ctx, k, "v"))
	}

	cache.Clear(ctx)
	require.Equal(t, int64(0), cache.Stats().Memory.Entries)
}

// TestManagerDurableRestart reopens the store under a fresh manager and
// still serves values written before the restart.
func TestManagerDurableRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := layercache.New(context.Background(), help.Cfg(dir), help.Logger())
	require.True(t, first.Init(context.Background()))
	require.True(t, first.Set(ctx, "persist-me", "still-here"))
	require.NoError(t, first.Close())

	second := layercache.New(context.Background(), help.Cfg(dir), help.Logger())
	defer second.Close()
	require.True(t, second.Init(context.Background()))

	got, ok := second.Get(ctx, "persist-me")
	require.True(t, ok)
	require.Equal(t, "still-here", got)
}

// TestManagerInitIdempotent tolerates repeated Init calls.
func TestManagerInitIdempotent(t *testing.T) {
	cache := layercache.New(context.Background(), help.Cfg(t.TempDir()), help.Logger())
	defer cache.Close()

	require.True(t, cache.Init(context.Background()))
	require.True(t, cache.Init(context.Background()))
	require.True(t, cache.Stats().Initialized)
}

// Package layercache provides a two-tier cache: a bounded in-memory tier in
// front of a durable bbolt-backed tier, plus a content-addressed cache for
// expensive computation results. Reads promote persistent hits back into
// memory; writes replicate to both tiers and succeed when either accepts.
package layercache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/mkovalev/go-layer-cache/config"
	"github.com/mkovalev/go-layer-cache/internal/codec"
	"github.com/mkovalev/go-layer-cache/internal/disk"
	"github.com/mkovalev/go-layer-cache/internal/memory"
	"github.com/mkovalev/go-layer-cache/internal/results"
	"github.com/mkovalev/go-layer-cache/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

// DefaultCategory labels records written without an explicit category.
const DefaultCategory = "general"

// Manager lifecycle. Tier-spanning operations before stateReady silently
// degrade to memory-only behavior; persistent work is skipped, not errored.
const (
	stateUninitialized int32 = iota
	stateInitializing
	stateReady
)

type LayerCache interface {
	Init(ctx context.Context) bool
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any) bool
	SetWithCategory(ctx context.Context, key string, value any, category string) bool
	Delete(ctx context.Context, key string) bool
	Clear(ctx context.Context)
	CacheComputationResult(ctx context.Context, input, result any, meta map[string]any) bool
	GetComputationResult(ctx context.Context, input any) (any, bool)
	Stats() Stats
	io.Closer
}

type Manager struct {
	ctx       context.Context
	cls       context.CancelFunc
	cfg       *config.Cache
	logger    *slog.Logger
	clock     clock.Clock
	codec     codec.Codec
	mem       *memory.Tier
	disk      *disk.Store
	results   *results.Cache
	telemetry *telemetry.Logs
	state     atomic.Int32
	sf        singleflight.Group
}

func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger) *Manager {
	return NewWithClock(ctx, cfg, logger, clock.New())
}

// NewWithClock builds a manager on an injectable clock so TTL behavior is
// testable with a mock.
func NewWithClock(ctx context.Context, cfg *config.Cache, logger *slog.Logger, clk clock.Clock) *Manager {
	cfg.AdjustConfig()
	ctx, cancel := context.WithCancel(ctx)
	logger = logger.With(slog.String("cache_id", uuid.NewString()))

	m := &Manager{
		ctx:    ctx,
		cls:    cancel,
		cfg:    cfg,
		logger: logger,
		clock:  clk,
		codec:  codec.JSON{},
		mem:    memory.New(cfg, logger, clk),
	}
	if cfg.Disk.Enabled() {
		m.disk = disk.New(cfg, logger, clk)
		if cfg.Results.Enabled() {
			m.results = results.New(cfg, logger, clk, m.disk)
		}
	}
	m.telemetry = telemetry.New(ctx, cfg, logger, m.mem, m.disk)
	return m
}

// Init opens the persistent tier and makes the result cache available.
// On failure the manager stays memory-only: the error is logged and false
// returned, but callers keep a working cache.
func (m *Manager) Init(ctx context.Context) bool {
	if m.disk == nil {
		return false
	}
	if !m.state.CompareAndSwap(stateUninitialized, stateInitializing) {
		return m.state.Load() == stateReady
	}

	// the sweeper must outlive this call, so it binds to the manager ctx
	if err := m.disk.Open(m.ctx); err != nil {
		m.logger.Warn("init persistent tier",
			"err", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
		m.state.Store(stateUninitialized)
		return false
	}

	m.state.Store(stateReady)
	m.logger.Info("persistent tier ready", "path", m.cfg.Disk.Path)
	return true
}

// Get probes the memory tier first and returns immediately on a hit. On a
// miss it consults the persistent tier when ready, promotes the value back
// into memory best-effort, and returns it. Concurrent misses for the same
// key share one persistent probe.
func (m *Manager) Get(ctx context.Context, key string) (any, bool) {
	b, ok := m.fetch(ctx, key)
	if !ok {
		return nil, false
	}
	return m.decode(key, b)
}

// GetAs reads a cached value through the same tier path as Manager.Get and
// decodes it into T.
func GetAs[T any](ctx context.Context, m *Manager, key string) (T, bool) {
	var out T
	b, ok := m.fetch(ctx, key)
	if !ok {
		return out, false
	}
	if err := m.codec.Decode(b, &out); err != nil {
		m.logger.Warn("decode cached value", "key", key, "err", err)
		var zero T
		return zero, false
	}
	return out, true
}

func (m *Manager) Set(ctx context.Context, key string, value any) bool {
	return m.SetWithCategory(ctx, key, value, DefaultCategory)
}

// SetWithCategory writes to the memory tier and, when ready, the persistent
// tier. The write succeeds when either tier accepted it: the memory write
// is the fast-path success criterion even if durable storage is temporarily
// unavailable.
func (m *Manager) SetWithCategory(ctx context.Context, key string, value any, category string) bool {
	b, err := m.codec.Encode(value)
	if err != nil {
		m.logger.Warn("set rejected",
			"key", key, "err", fmt.Errorf("%w: %w", ErrSerialization, err))
		return false
	}

	memOK := m.mem.Set(key, b)
	diskOK := false
	if m.ready() {
		diskOK = m.disk.Set(ctx, key, b, category)
	}
	return memOK || diskOK
}

// Delete removes the key from both tiers and reports whether either
// deletion occurred.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	memHit := m.mem.Delete(key)
	diskHit := false
	if m.ready() {
		diskHit = m.disk.Delete(ctx, key)
	}
	return memHit || diskHit
}

// Clear wipes the memory tier and schedules a persistent cleanup sweep.
func (m *Manager) Clear(ctx context.Context) {
	m.mem.Clear()
	if m.ready() {
		m.disk.KickCleanup()
	}
}

// CacheComputationResult passes straight through to the result cache,
// returning false while the manager is not ready.
func (m *Manager) CacheComputationResult(ctx context.Context, input, result any, meta map[string]any) bool {
	if !m.resultsReady() {
		return false
	}
	var m2 any
	if meta != nil {
		m2 = meta
	}
	return m.results.CacheResult(ctx, input, result, m2)
}

// GetComputationResult passes straight through to the result cache,
// returning a miss while the manager is not ready.
func (m *Manager) GetComputationResult(ctx context.Context, input any) (any, bool) {
	if !m.resultsReady() {
		return nil, false
	}
	raw, ok := m.results.GetResult(ctx, input)
	if !ok {
		return nil, false
	}
	var out any
	if err := m.codec.Decode(raw, &out); err != nil {
		m.logger.Warn("decode computation result", "err", err)
		return nil, false
	}
	return out, true
}

func (m *Manager) Stats() Stats {
	st := m.mem.Stats()
	return Stats{
		Memory: MemoryStats{
			Entries:            st.Entries,
			BytesUsed:          st.BytesUsed,
			CapacityBytes:      st.CapacityBytes,
			UtilizationPercent: st.UtilizationPercent,
		},
		Initialized:          m.ready(),
		ResultCacheAvailable: m.resultsReady(),
	}
}

func (m *Manager) Close() error {
	m.cls()
	if m.disk != nil {
		return m.disk.Close()
	}
	return nil
}

/**
 * Private API.
 */

func (m *Manager) ready() bool {
	return m.state.Load() == stateReady
}

func (m *Manager) resultsReady() bool {
	return m.results != nil && m.ready()
}

func (m *Manager) fetch(ctx context.Context, key string) ([]byte, bool) {
	if b, ok := m.mem.Get(key); ok {
		return b, true
	}
	if !m.ready() {
		return nil, false
	}

	v, _, _ := m.sf.Do(key, func() (any, error) {
		b, ok := m.disk.Get(ctx, key)
		if !ok {
			return nil, nil
		}
		// best-effort promotion; a rejected promote is not an error
		m.mem.Set(key, b)
		return b, nil
	})

	b, _ := v.([]byte)
	if b == nil {
		return nil, false
	}
	return b, true
}

func (m *Manager) decode(key string, b []byte) (any, bool) {
	var out any
	if err := m.codec.Decode(b, &out); err != nil {
		m.logger.Warn("decode cached value", "key", key, "err", err)
		return nil, false
	}
	return out, true
}

// Package results implements the content-addressed computation result
// cache. Records are keyed by a hash of the computation's input, so
// repeated requests for the same logical computation collapse to a single
// slot regardless of which call site triggered them.
package results

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/mkovalev/go-layer-cache/config"
	"github.com/mkovalev/go-layer-cache/internal/disk"
	"github.com/mkovalev/go-layer-cache/internal/hashing"
)

const keyPrefix = "result-"

// Cache specializes the persistent tier for expensive deterministic
// computations: content-derived keys, its own TTL, and a hard entry cap
// enforced on every store.
type Cache struct {
	cfg    *config.Cache
	logger *slog.Logger
	clock  clock.Clock
	store  *disk.Store
}

func New(cfg *config.Cache, logger *slog.Logger, clk clock.Clock, store *disk.Store) *Cache {
	return &Cache{
		cfg:    cfg,
		logger: logger,
		clock:  clk,
		store:  store,
	}
}

// CacheResult stores the outcome of a computation under a key derived from
// its input. The entry cap is enforced before returning, so the collection
// never stays over the limit after a successful store.
func (c *Cache) CacheResult(ctx context.Context, input, result, meta any) bool {
	hash, err := hashing.Sum(input)
	if err != nil {
		c.logger.Warn("results: input is not hashable", "err", err)
		return false
	}

	inputRaw, err := json.Marshal(input)
	if err != nil {
		c.logger.Warn("results: serialize input", "err", err)
		return false
	}
	resultRaw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("results: serialize result", "err", err)
		return false
	}
	var metaRaw json.RawMessage
	if meta != nil {
		if metaRaw, err = json.Marshal(meta); err != nil {
			c.logger.Warn("results: serialize metadata", "err", err)
			return false
		}
	}

	rec := &disk.ResultRecord{
		Key:         keyPrefix + hash,
		ContentHash: hash,
		Input:       inputRaw,
		Result:      resultRaw,
		Meta:        metaRaw,
		StoredAt:    c.clock.Now().UnixNano(),
		Size:        int64(len(resultRaw)),
	}
	if !c.store.PutResult(ctx, rec) {
		return false
	}

	if trimmed := c.store.TrimResults(ctx, c.cfg.Results.MaxEntries); trimmed > 0 {
		c.logger.Info("results: trimmed to entry cap",
			"removed", trimmed, "cap", c.cfg.Results.MaxEntries)
	}
	return true
}

// GetResult re-derives the content key from input and returns the stored
// result, dropping the record first when the result TTL has elapsed.
func (c *Cache) GetResult(ctx context.Context, input any) (json.RawMessage, bool) {
	hash, err := hashing.Sum(input)
	if err != nil {
		c.logger.Warn("results: input is not hashable", "err", err)
		return nil, false
	}

	rec, ok := c.store.GetResult(ctx, keyPrefix+hash)
	if !ok {
		return nil, false
	}

	if c.cfg.Results.TTL > 0 && c.clock.Now().UnixNano()-rec.StoredAt > c.cfg.Results.TTL.Nanoseconds() {
		c.store.DeleteResult(ctx, rec.Key)
		return nil, false
	}

	return rec.Result, true
}

// Count reports the number of stored results.
func (c *Cache) Count(ctx context.Context) int {
	return c.store.ResultCount(ctx)
}

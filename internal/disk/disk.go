// Package disk implements the persistent tier: a durable, transactional
// key/value store backed by bbolt, organized into a general collection and
// a computation-results collection. Infrastructure failures never escape
// the tier boundary; they are logged and converted to a miss or a false
// return.
package disk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mkovalev/go-layer-cache/config"
	bolt "go.etcd.io/bbolt"
)

const openTimeout = time.Second

type Store struct {
	cfg      *config.Cache
	logger   *slog.Logger
	clock    clock.Clock
	db       *bolt.DB
	sweeper  *sweeper
	counters *counters
}

func New(cfg *config.Cache, logger *slog.Logger, clk clock.Clock) *Store {
	return &Store{
		cfg:      cfg,
		logger:   logger,
		clock:    clk,
		counters: newCounters(),
	}
}

// Open creates or opens the store file, ensures both collections and their
// timestamp indexes exist, and starts the background cleanup sweeper. The
// sweeper lives until ctx is canceled.
func (s *Store) Open(ctx context.Context) error {
	db, err := bolt.Open(s.cfg.Disk.Path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("open store file %s: %w", s.cfg.Disk.Path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{generalBucket, generalIdxBucket, resultsBucket, resultsIdxBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create collection %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.sweeper = newSweeper(ctx, s)
	return nil
}

// Set writes a record into the general collection and schedules a cleanup
// sweep. The sweep is fire-and-forget: its outcome never affects the write.
func (s *Store) Set(ctx context.Context, key string, payload []byte, category string) bool {
	if s.db == nil || ctx.Err() != nil {
		return false
	}

	rec := Record{
		Key:      key,
		Value:    payload,
		Category: category,
		StoredAt: s.clock.Now().UnixNano(),
		Size:     int64(len(payload)),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: serialize record", "key", key, "err", err)
		return false
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(generalBucket))
		idx := tx.Bucket([]byte(generalIdxBucket))

		if prev := b.Get([]byte(key)); prev != nil {
			var old Record
			if json.Unmarshal(prev, &old) == nil {
				if err := idx.Delete(tsKey(old.StoredAt, key)); err != nil {
					return err
				}
			}
		}
		if err := b.Put([]byte(key), data); err != nil {
			return err
		}
		return idx.Put(tsKey(rec.StoredAt, key), []byte(key))
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: set failed", "key", key, "err", err)
		return false
	}

	s.counters.writes.Add(1)
	s.sweeper.kick()
	return true
}

// Get reads a record from the general collection, dropping it first when
// its TTL has elapsed.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.db == nil || ctx.Err() != nil {
		return nil, false
	}

	var (
		rec   Record
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(generalBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode record %s: %w", key, err)
		}
		found = true
		return nil
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: get failed", "key", key, "err", err)
		return nil, false
	}
	if !found {
		s.counters.misses.Add(1)
		return nil, false
	}

	if s.cfg.Disk.TTL > 0 && s.clock.Now().UnixNano()-rec.StoredAt > s.cfg.Disk.TTL.Nanoseconds() {
		s.dropGeneral(key, rec.StoredAt)
		s.counters.expired.Add(1)
		s.counters.misses.Add(1)
		return nil, false
	}

	s.counters.hits.Add(1)
	return rec.Value, true
}

// Delete removes a record from the general collection.
func (s *Store) Delete(ctx context.Context, key string) bool {
	if s.db == nil || ctx.Err() != nil {
		return false
	}

	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(generalBucket))
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		var rec Record
		if json.Unmarshal(raw, &rec) == nil {
			if err := tx.Bucket([]byte(generalIdxBucket)).Delete(tsKey(rec.StoredAt, key)); err != nil {
				return err
			}
		}
		if err := b.Delete([]byte(key)); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: delete failed", "key", key, "err", err)
		return false
	}
	return removed
}

// Cleanup removes every general-collection record older than the tier TTL,
// walking the timestamp index oldest first.
func (s *Store) Cleanup(ctx context.Context) (removed int, err error) {
	if s.db == nil {
		return 0, nil
	}
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := s.clock.Now().Add(-s.cfg.Disk.TTL).UnixNano()
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(generalBucket))
		idx := tx.Bucket([]byte(generalIdxBucket))

		c := idx.Cursor()
		for k, primary := c.First(); k != nil && tsKeyAt(k) < cutoff; k, primary = c.Next() {
			if err := b.Delete(primary); err != nil {
				return err
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cleanup general collection: %w", err)
	}
	return removed, nil
}

// Len reports the number of records in the general collection.
func (s *Store) Len() int {
	if s.db == nil {
		return 0
	}
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(generalBucket)).Stats().KeyN
		return nil
	})
	return n
}

// KickCleanup schedules an asynchronous cleanup sweep.
func (s *Store) KickCleanup() {
	if s.sweeper != nil {
		s.sweeper.kick()
	}
}

func (s *Store) Metrics() (writes, hits, misses, expired, errs, sweeps, sweepFailures, sweptRecords int64) {
	return s.counters.snapshot()
}

// SweepMetrics exposes background sweep outcomes so fire-and-forget cleanup
// stays observable in tests and telemetry.
func (s *Store) SweepMetrics() (sweeps, failures, removed int64) {
	return s.counters.sweepSnapshot()
}

// ResultTrims reports how many result records were removed by entry-cap
// trims since the store opened.
func (s *Store) ResultTrims() int64 {
	return s.counters.resultTrims.Load()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// dropGeneral removes a record found expired at read time.
func (s *Store) dropGeneral(key string, storedAt int64) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(generalBucket)).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket([]byte(generalIdxBucket)).Delete(tsKey(storedAt, key))
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: drop expired record", "key", key, "err", err)
	}
}

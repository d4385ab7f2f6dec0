package disk

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"
)

// Result-collection operations. The computation result cache layers its
// hashing and TTL policy on top of these; this file only owns durability
// and the entry-count trim.

// PutResult stores a result record under its content-derived key.
func (s *Store) PutResult(ctx context.Context, rec *ResultRecord) bool {
	if s.db == nil || ctx.Err() != nil {
		return false
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: serialize result record", "key", rec.Key, "err", err)
		return false
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucket))
		idx := tx.Bucket([]byte(resultsIdxBucket))

		if prev := b.Get([]byte(rec.Key)); prev != nil {
			var old ResultRecord
			if json.Unmarshal(prev, &old) == nil {
				if err := idx.Delete(tsKey(old.StoredAt, old.Key)); err != nil {
					return err
				}
			}
		}
		if err := b.Put([]byte(rec.Key), data); err != nil {
			return err
		}
		return idx.Put(tsKey(rec.StoredAt, rec.Key), []byte(rec.Key))
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: put result failed", "key", rec.Key, "err", err)
		return false
	}

	s.counters.writes.Add(1)
	return true
}

// GetResult reads a result record by key. TTL is not applied here; the
// result cache owns expiry policy.
func (s *Store) GetResult(ctx context.Context, key string) (*ResultRecord, bool) {
	if s.db == nil || ctx.Err() != nil {
		return nil, false
	}

	var (
		rec   ResultRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(resultsBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		s.counters.errors.Add(1)
		s.logger.Warn("disk: get result failed", "key", key, "err", err)
		return nil, false
	}
	if !found {
		s.counters.misses.Add(1)
		return nil, false
	}

	s.counters.hits.Add(1)
	return &rec, true
}

// DeleteResult removes a result record.
func (s *Store) DeleteResult(ctx context.Context, key string) bool {
	if s.db == nil || ctx.Err() != nil {
		return false
	}

	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucket))
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		var rec ResultRecord
		if json.Unmarshal(raw, &rec) == nil {
			if err := tx.Bucket([]byte(resultsIdxBucket)).Delete(tsKey(rec.StoredAt, key)); err != nil {
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
		s.logger.Warn("disk: delete result failed", "key", key, "err", err)
		return false
	}
	return removed
}

// ResultCount reports the number of stored result records.
func (s *Store) ResultCount(ctx context.Context) int {
	if s.db == nil || ctx.Err() != nil {
		return 0
	}
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(resultsBucket)).Stats().KeyN
		return nil
	})
	return n
}

// TrimResults deletes the oldest result records until at most limit remain.
// This is a hard cap independent of TTL: fresh records are removed too once
// the collection is over the limit.
func (s *Store) TrimResults(ctx context.Context, limit int) (removed int) {
	if s.db == nil || ctx.Err() != nil || limit <= 0 {
		return 0
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucket))
		idx := tx.Bucket([]byte(resultsIdxBucket))

		over := b.Stats().KeyN - limit
		if over <= 0 {
			return nil
		}

		c := idx.Cursor()
		for k, primary := c.First(); k != nil && removed < over; k, primary = c.Next() {
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
		s.counters.errors.Add(1)
		s.logger.Warn("disk: trim results failed", "err", err)
		return 0
	}
	if removed > 0 {
		s.counters.resultTrims.Add(int64(removed))
	}
	return removed
}

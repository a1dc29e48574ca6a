package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const jobBucket = "completed_jobs"

// jobRecord is the value stored per fingerprint.
type jobRecord struct {
	JobID       string    `json:"job_id"`
	CompletedAt time.Time `json:"completed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r jobRecord) live(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	jobTTL          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(jobBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		jobTTL:          opts.JobTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Completed reports whether the fingerprint was marked within the job TTL.
// Expired records are deleted on read.
func (b *boltStore) Completed(fingerprint string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var done bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}

		key := []byte(fingerprint)
		raw := bucket.Get(key)
		if raw == nil {
			return nil
		}

		rec, ok := decodeRecord(raw)
		if !ok || !rec.live(now) {
			return bucket.Delete(key)
		}
		done = true
		return nil
	})
	return done, err
}

// MarkCompleted records a finished job; the record expires after the job TTL.
func (b *boltStore) MarkCompleted(fingerprint, jobID string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	raw, err := json.Marshal(jobRecord{
		JobID:       jobID,
		CompletedAt: now.UTC(),
		ExpiresAt:   now.Add(b.jobTTL).UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode job record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(fingerprint), raw)
	})
}

// Forget drops a fingerprint so the job runs again.
func (b *boltStore) Forget(fingerprint string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.Delete([]byte(fingerprint))
	})
}

// maybeCleanupExpired sweeps expired records at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			rec, ok := decodeRecord(v)
			if !ok || !rec.live(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func jobsBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(jobBucket))
	if bucket == nil {
		return nil, fmt.Errorf("completed jobs bucket missing")
	}
	return bucket, nil
}

func decodeRecord(raw []byte) (jobRecord, bool) {
	var rec jobRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return jobRecord{}, false
	}
	if rec.ExpiresAt.IsZero() {
		return jobRecord{}, false
	}
	return rec, true
}

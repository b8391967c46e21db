package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

var notificationBucket = []byte("notifications")

// record layout: status (1 byte) | expiry unix nanos (8) | attempts (4).
const recordSize = 13

type record struct {
	status   Status
	expires  time.Time
	attempts uint32
}

func (r record) live(now time.Time) bool { return r.expires.After(now) }

func (r record) encode() []byte {
	buf := make([]byte, recordSize)
	buf[0] = byte(r.status)
	binary.BigEndian.PutUint64(buf[1:9], uint64(r.expires.UnixNano()))
	binary.BigEndian.PutUint32(buf[9:], r.attempts)
	return buf
}

func decodeRecord(v []byte) (record, bool) {
	if len(v) != recordSize || Status(v[0]) > StatusDelivered {
		return record{}, false
	}
	return record{
		status:   Status(v[0]),
		expires:  time.Unix(0, int64(binary.BigEndian.Uint64(v[1:9]))),
		attempts: binary.BigEndian.Uint32(v[9:]),
	}, true
}

// boltStore keeps notification records in a single bbolt bucket. Every
// state change happens inside one Update transaction; bbolt serializes
// writers, which makes Claim a compare-and-set.
type boltStore struct {
	db          *bolt.DB
	opts        Options
	now         func() time.Time
	lastCleanup atomic.Int64
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(notificationBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	s := &boltStore{db: db, opts: opts, now: time.Now}
	s.lastCleanup.Store(s.now().UnixNano())
	return s, nil
}

func (s *boltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Claim grants the key unless it is delivered or held by a live claim. A
// claim whose timeout passed is taken over, so a crashed handler does not
// block redelivery forever.
func (s *boltStore) Claim(key string) (Claim, error) {
	var out Claim
	err := s.update(func(b *bolt.Bucket, now time.Time) error {
		k := []byte(key)
		rec, ok := decodeRecord(b.Get(k))
		if ok && rec.live(now) && rec.status != StatusNew {
			out = Claim{Status: rec.status, Attempts: int(rec.attempts)}
			return nil
		}

		attempts := uint32(0)
		if ok && (rec.live(now) || rec.status == StatusInFlight) {
			attempts = rec.attempts
		}
		next := record{status: StatusInFlight, expires: now.Add(s.opts.ClaimTimeout), attempts: attempts + 1}
		out = Claim{Acquired: true, Status: StatusNew, Attempts: int(next.attempts)}
		return b.Put(k, next.encode())
	})
	return out, err
}

// Complete marks the key delivered for TTL.
func (s *boltStore) Complete(key string) error {
	return s.update(func(b *bolt.Bucket, now time.Time) error {
		k := []byte(key)
		rec, _ := decodeRecord(b.Get(k))
		rec.status = StatusDelivered
		rec.expires = now.Add(s.opts.TTL)
		return b.Put(k, rec.encode())
	})
}

// Release gives up an in-flight claim so the next delivery is processed.
// The attempt count is kept. Releasing a delivered key is a no-op.
func (s *boltStore) Release(key string) error {
	return s.update(func(b *bolt.Bucket, now time.Time) error {
		k := []byte(key)
		rec, ok := decodeRecord(b.Get(k))
		if !ok || rec.status != StatusInFlight {
			return nil
		}
		rec.status = StatusNew
		rec.expires = now.Add(s.opts.TTL)
		return b.Put(k, rec.encode())
	})
}

// update runs fn in a write transaction and sweeps expired records in the
// same transaction when a cleanup is due.
func (s *boltStore) update(fn func(b *bolt.Bucket, now time.Time) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("notification store is closed")
	}
	now := s.now()
	swept := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(notificationBucket)
		if b == nil {
			return fmt.Errorf("notification bucket missing")
		}
		if s.sweepDue(now) {
			if err := s.sweep(b, now); err != nil {
				return err
			}
			swept = true
		}
		return fn(b, now)
	})
	if err == nil && swept {
		s.lastCleanup.Store(now.UnixNano())
	}
	return err
}

func (s *boltStore) sweepDue(now time.Time) bool {
	return now.Sub(time.Unix(0, s.lastCleanup.Load())) >= s.opts.CleanupInterval
}

func (s *boltStore) sweep(b *bolt.Bucket, now time.Time) error {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		rec, ok := decodeRecord(v)
		if ok && rec.live(now) {
			continue
		}
		// in-flight records past their timeout keep their attempt count
		// until the longer TTL passes
		if ok && rec.status == StatusInFlight && now.Sub(rec.expires) < s.opts.TTL {
			continue
		}
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

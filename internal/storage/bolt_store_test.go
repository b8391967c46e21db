package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

const paymentKey = "payment.completed|https://api.unzer.com/v1/payments/s-pay-1"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBolt(t *testing.T, opts Options) (*boltStore, *testClock) {
	t.Helper()
	s, err := openBolt(filepath.Join(t.TempDir(), "notifications.db"), opts.withDefaults())
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	s.now = clock.Now
	s.lastCleanup.Store(clock.Now().UnixNano())
	return s, clock
}

func mustClaim(t *testing.T, s Store, key string) Claim {
	t.Helper()
	c, err := s.Claim(key)
	if err != nil {
		t.Fatalf("Claim(%q): %v", key, err)
	}
	return c
}

func TestBoltClaimLifecycle(t *testing.T) {
	s, _ := newTestBolt(t, Options{})

	if c := mustClaim(t, s, paymentKey); !c.Acquired || c.Attempts != 1 {
		t.Fatalf("first claim = %+v", c)
	}
	if c := mustClaim(t, s, paymentKey); c.Acquired || c.Status != StatusInFlight {
		t.Fatalf("claim while in flight = %+v", c)
	}

	if err := s.Complete(paymentKey); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c := mustClaim(t, s, paymentKey); c.Acquired || c.Status != StatusDelivered || c.Attempts != 1 {
		t.Fatalf("claim after delivery = %+v", c)
	}

	if err := s.Release(paymentKey); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if c := mustClaim(t, s, paymentKey); c.Acquired || c.Status != StatusDelivered {
		t.Fatalf("release must not undo a delivery, got %+v", c)
	}
}

func TestBoltReleaseAllowsRedeliveryAndCountsAttempts(t *testing.T) {
	s, _ := newTestBolt(t, Options{})

	mustClaim(t, s, paymentKey)
	if err := s.Release(paymentKey); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if c := mustClaim(t, s, paymentKey); !c.Acquired || c.Attempts != 2 {
		t.Fatalf("claim after release = %+v", c)
	}
}

func TestBoltStaleClaimIsTakenOver(t *testing.T) {
	s, clock := newTestBolt(t, Options{ClaimTimeout: time.Minute})

	mustClaim(t, s, paymentKey)
	clock.Advance(30 * time.Second)
	if c := mustClaim(t, s, paymentKey); c.Acquired {
		t.Fatalf("live claim must block, got %+v", c)
	}

	clock.Advance(31 * time.Second)
	if c := mustClaim(t, s, paymentKey); !c.Acquired || c.Attempts != 2 {
		t.Fatalf("stale claim should be taken over, got %+v", c)
	}
}

func TestBoltDeliveredExpiresAfterTTL(t *testing.T) {
	s, clock := newTestBolt(t, Options{TTL: time.Hour})

	mustClaim(t, s, paymentKey)
	if err := s.Complete(paymentKey); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	clock.Advance(time.Hour + time.Second)
	if c := mustClaim(t, s, paymentKey); !c.Acquired || c.Attempts != 1 {
		t.Fatalf("expired delivery should start fresh, got %+v", c)
	}
}

func TestBoltConcurrentClaimsGrantOne(t *testing.T) {
	s, _ := newTestBolt(t, Options{})

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.Claim(paymentKey)
			if err != nil {
				t.Errorf("Claim: %v", err)
				return
			}
			if c.Acquired {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if acquired != 1 {
		t.Fatalf("expected exactly one claim to be granted, got %d", acquired)
	}
}

func TestBoltSweepDropsExpiredRecords(t *testing.T) {
	s, clock := newTestBolt(t, Options{TTL: time.Hour, CleanupInterval: time.Hour})

	mustClaim(t, s, "old")
	if err := s.Complete("old"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	clock.Advance(2 * time.Hour)
	mustClaim(t, s, "fresh")

	var keys []string
	if err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(notificationBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	}); err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(keys) != 1 || keys[0] != "fresh" {
		t.Fatalf("expected only the fresh key to remain, got %v", keys)
	}
}

func TestBoltReopenKeepsDeliveries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notifications.db")
	store, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	mustClaim(t, store, "k1")
	if err := store.Complete("k1"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if c := mustClaim(t, store, "k1"); c.Acquired || c.Status != StatusDelivered {
		t.Fatalf("delivery should survive reopen, got %+v", c)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	for i := 0; i < 2; i++ {
		if c := mustClaim(t, store, "x"); !c.Acquired {
			t.Fatalf("noop store should grant every claim")
		}
		if err := store.Complete("x"); err != nil {
			t.Fatalf("noop Complete: %v", err)
		}
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty bbolt path")
	}
}

func TestStatusString(t *testing.T) {
	if StatusDelivered.String() != "delivered" || StatusInFlight.String() != "in_flight" || Status(9).String() != "status(9)" {
		t.Fatalf("unexpected status names")
	}
}

package storage

import (
	"fmt"
	"strings"
	"time"
)

// Status is the delivery state recorded for a notification key.
type Status uint8

const (
	// StatusNew means the key is unknown, expired or was released after a
	// failed attempt.
	StatusNew Status = iota
	// StatusInFlight means a handler holds the claim and has not finished.
	StatusInFlight
	// StatusDelivered means the notification was relayed successfully.
	StatusDelivered
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusInFlight:
		return "in_flight"
	case StatusDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Claim is the outcome of Store.Claim.
type Claim struct {
	// Acquired is true when the caller now owns the key and must finish
	// with Complete or Release.
	Acquired bool
	// Status is the live state found before the call.
	Status Status
	// Attempts counts claims granted on the key, this one included.
	Attempts int
}

// Store tracks which webhook notifications are being or have been relayed.
// Claim, Complete and Release are each atomic, so two deliveries of the
// same notification never both acquire it.
type Store interface {
	Claim(key string) (Claim, error)
	Complete(key string) error
	Release(key string) error
	Close() error
}

// Options controls retention of notification records.
type Options struct {
	// TTL is how long delivered and released keys are remembered.
	TTL time.Duration
	// ClaimTimeout is how long an unfinished claim blocks other deliveries.
	ClaimTimeout time.Duration
	// CleanupInterval is the minimum time between sweeps of expired keys.
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultClaimTimeout    = 2 * time.Minute
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		s, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.ClaimTimeout <= 0 {
		o.ClaimTimeout = defaultClaimTimeout
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = defaultCleanupInterval
	}
	return o
}

// noopStore grants every claim, which disables de-duplication.
type noopStore struct{}

func (noopStore) Claim(string) (Claim, error) {
	return Claim{Acquired: true, Status: StatusNew, Attempts: 1}, nil
}
func (noopStore) Complete(string) error { return nil }
func (noopStore) Release(string) error  { return nil }
func (noopStore) Close() error          { return nil }

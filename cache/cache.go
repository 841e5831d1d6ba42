package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/w-h-a/insight/store"
	"golang.org/x/sync/singleflight"
)

// Fingerprint derives a deterministic content-addressed key from its parts.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

type result struct {
	value  string
	cached bool
}

// Cache fronts the store with at-most-one-compute-per-key semantics. Concurrent
// callers for the same key share a single in-flight computation, and a value is
// only persisted once: later computes for a key that already holds a value are
// never invoked.
type Cache struct {
	store store.Store
	group singleflight.Group
}

// GetOrCompute returns the stored value for (kind, key) when present, or runs
// compute exactly once across concurrent callers and persists its result. The
// returned bool reports whether the value was served from the store. A failed
// compute leaves the key absent, so a later call retries. Waiters abandon the
// wait when ctx is done, but the shared computation keeps running so its result
// still lands in the store.
func (c *Cache) GetOrCompute(ctx context.Context, kind store.Kind, key string, compute func(ctx context.Context) (string, error)) (string, bool, error) {
	value, found, err := c.store.GetEntry(ctx, kind, key)
	if err != nil {
		return "", false, err
	}
	if found {
		return value, true, nil
	}

	flightKey := string(kind) + "|" + key

	ch := c.group.DoChan(flightKey, func() (any, error) {
		detached := context.WithoutCancel(ctx)

		value, found, err := c.store.GetEntry(detached, kind, key)
		if err != nil {
			return nil, err
		}
		if found {
			return result{value: value, cached: true}, nil
		}

		value, err = compute(detached)
		if err != nil {
			return nil, err
		}

		if err := c.store.PutEntry(detached, kind, key, value); err != nil {
			return nil, err
		}

		return result{value: value}, nil
	})

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		r := res.Val.(result)
		return r.value, r.cached, nil
	}
}

func New(s store.Store) *Cache {
	return &Cache{
		store: s,
	}
}

package cache

import (
	"sync"
	"time"
)

// TTL is a freshness-checked cache over a bounded LRU store. It caches single
// records and lists but never errors: backend failures are re-fetched on
// every call. Invalidation stores a tombstone rather than removing the
// physical entry.
type TTL[T any] struct {
	mu    sync.Mutex
	store *store[T]
	ttl   time.Duration
	now   func() time.Time
}

// NewTTL builds a TTL cache with the given options.
func NewTTL[T any](opts ...Option) (*TTL[T], error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	store, err := newStore[T](cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return &TTL[T]{store: store, ttl: cfg.TTL, now: cfg.Now}, nil
}

// Get returns the cached result for k if an entry exists, is not a
// tombstone, and is still fresh. Absent and expired both count as a miss;
// expired entries are left in place and shadowed by the freshness check.
func (c *TTL[T]) Get(k Key) (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(k)
	if !ok || e.deleted || !c.fresh(e) {
		return Result[T]{}, false
	}
	return e.res.clone(), true
}

// Put stores r under k with a fresh timestamp. Error results are dropped:
// this variant does not negative-cache.
func (c *TTL[T]) Put(k Key, r Result[T]) {
	if r.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(k, entry[T]{res: r.clone(), insertedAt: c.now().UnixNano()})
}

// Purge tombstones k so subsequent Gets miss regardless of TTL.
func (c *TTL[T]) Purge(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(k, entry[T]{deleted: true, insertedAt: c.now().UnixNano()})
}

func (c *TTL[T]) fresh(e entry[T]) bool {
	return c.now().UnixNano()-e.insertedAt <= int64(c.ttl)
}

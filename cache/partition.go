package cache

import (
	"sync"
	"time"
)

// Partitioned is a TTL cache for resources whose backend listings interleave
// tenant-owned and globally shared records. Writes split a listing into one
// namespace per owner plus the anonymous namespace; reads merge the caller's
// namespace with the anonymous one. Unlike the plain TTL variant it
// negative-caches translated backend errors.
type Partitioned[T Owned] struct {
	mu    sync.Mutex
	store *store[T]
	ttl   time.Duration
	now   func() time.Time
}

// NewPartitioned builds a partitioned cache with the given options.
func NewPartitioned[T Owned](opts ...Option) (*Partitioned[T], error) {
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
	return &Partitioned[T]{store: store, ttl: cfg.TTL, now: cfg.Now}, nil
}

// Put stores r for (tenant, name).
//
// Lists are partitioned by each record's owner: ownerless records go to the
// anonymous namespace, owned records to their owner's namespace, every
// partition stamped with the same insertion time. The calling tenant's
// subsequence is written even when it is empty, so an empty listing is a
// cacheable result and later reads stay gated by the tenant partition's
// freshness. A single ownerless record
// is stored anonymously — a tenant key never holds a shared singleton. Error
// results are stored under the tenant key as negative entries.
func (c *Partitioned[T]) Put(tenant, name string, r Result[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixNano()

	if err := r.Err(); err != nil {
		c.store.Set(Key{tenant, name}, entry[T]{res: r, insertedAt: ts})
		return
	}

	if list, ok := r.List(); ok {
		parts := map[string][]T{tenant: nil} // tenant subsequence is stored even when empty
		for _, rec := range list {
			owner := rec.Owner()
			if owner == "" {
				owner = AnonymousTenant
			}
			parts[owner] = append(parts[owner], rec)
		}
		for owner, sub := range parts {
			c.store.Set(Key{owner, name}, entry[T]{res: ListResult(sub), insertedAt: ts})
		}
		return
	}

	if rec, ok := r.Single(); ok {
		key := Key{tenant, name}
		if rec.Owner() == "" {
			key = Key{AnonymousTenant, name}
		}
		c.store.Set(key, entry[T]{res: r, insertedAt: ts})
	}
}

// Get returns the merged cached result for (tenant, name).
//
// Freshness of the merged read is gated by the tenant partition whenever a
// tenant entry is present at all: an expired or tombstoned tenant entry is a
// miss even when the anonymous partition alone would have been fresh. Only
// when the tenant key was never populated does a fresh anonymous entry stand
// on its own.
func (c *Partitioned[T]) Get(tenant, name string) (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	te, tok := c.store.Get(Key{tenant, name})
	ae, aok := c.store.Get(Key{AnonymousTenant, name})
	anonFresh := aok && !ae.deleted && c.fresh(ae)

	if !tok {
		if anonFresh {
			return ae.res.clone(), true
		}
		return Result[T]{}, false
	}
	if te.deleted || !c.fresh(te) {
		return Result[T]{}, false
	}

	if te.res.Err() != nil {
		// Negative hit: the anonymous partition is ignored entirely.
		return te.res, true
	}

	if list, ok := te.res.List(); ok {
		if anonFresh {
			if alist, ok := ae.res.List(); ok {
				merged := make([]T, 0, len(list)+len(alist))
				merged = append(merged, list...)
				merged = append(merged, alist...)
				return ListResult(merged), true
			}
		}
		return te.res.clone(), true
	}

	// Ownership singletons are never merged.
	return te.res.clone(), true
}

// Purge tombstones the tenant partition for (tenant, name). The anonymous
// partition is never an invalidation target of a tenant-scoped mutation.
func (c *Partitioned[T]) Purge(tenant, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(Key{tenant, name}, entry[T]{deleted: true, insertedAt: c.now().UnixNano()})
}

func (c *Partitioned[T]) fresh(e entry[T]) bool {
	return c.now().UnixNano()-e.insertedAt <= int64(c.ttl)
}

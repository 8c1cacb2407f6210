package cache

import lru "github.com/hashicorp/golang-lru/v2"

// entry is what the store holds per key. Expired entries are never swept;
// they stay in place until overwritten or evicted by capacity pressure, and
// freshness is checked lazily by the layers above.
type entry[T any] struct {
	res        Result[T]
	insertedAt int64 // unix nanoseconds
	deleted    bool  // tombstone: always a miss, regardless of age
}

// store is a bounded key→entry map evicting the least recently accessed
// entry first. It has no TTL knowledge.
type store[T any] struct {
	lru *lru.Cache[Key, entry[T]]
}

// newStore builds a store holding at most capacity entries.
func newStore[T any](capacity int) (*store[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	l, err := lru.New[Key, entry[T]](capacity)
	if err != nil {
		return nil, err
	}
	return &store[T]{lru: l}, nil
}

// Get returns the entry for k and marks it most recently used.
func (s *store[T]) Get(k Key) (entry[T], bool) {
	return s.lru.Get(k)
}

// Set inserts or overwrites the entry for k and marks it most recently used.
func (s *store[T]) Set(k Key, e entry[T]) {
	s.lru.Add(k, e)
}

// Delete removes the entry for k, if present.
func (s *store[T]) Delete(k Key) {
	s.lru.Remove(k)
}

// Len reports the number of entries currently held, expired ones included.
func (s *store[T]) Len() int {
	return s.lru.Len()
}

// Package cache provides the in-memory read-through caches used by the
// resource clients: a bounded LRU store, a TTL layer on top of it, and a
// partitioned variant that splits backend listings into tenant-owned and
// shared namespaces and merges them back together on read.
package cache

import "errors"

var ErrInvalidCapacity = errors.New("cache: capacity must be positive")

const (
	// AnonymousTenant is the reserved tenant namespace for globally shared
	// entries. Backends reject '*' in logins, so it cannot collide with a
	// real tenant id.
	AnonymousTenant = "*anonymous*"

	// ListResource is the reserved resource name for a tenant's full
	// collection.
	ListResource = "*list*"
)

// Key identifies a cached resource within a tenant namespace.
type Key struct {
	Tenant string
	Name   string
}

// Owned is implemented by resource records that carry an owner. An empty
// owner marks a globally shared record.
type Owned interface {
	Owner() string
}

type resultKind int

const (
	kindNone resultKind = iota
	kindSingle
	kindList
	kindError
)

// Result is the tagged outcome stored by the caches: a single record, an
// ordered list of records, or a translated backend error. The tag is fixed
// when the Result is built, so callers never type-inspect cached values.
type Result[T any] struct {
	kind resultKind
	one  T
	list []T
	err  error
}

// SingleResult wraps one record.
func SingleResult[T any](v T) Result[T] {
	return Result[T]{kind: kindSingle, one: v}
}

// ListResult wraps an ordered sequence of records.
func ListResult[T any](vs []T) Result[T] {
	return Result[T]{kind: kindList, list: vs}
}

// ErrorResult wraps a translated backend error for negative caching.
func ErrorResult[T any](err error) Result[T] {
	return Result[T]{kind: kindError, err: err}
}

// Single returns the wrapped record, if any.
func (r Result[T]) Single() (T, bool) {
	return r.one, r.kind == kindSingle
}

// List returns the wrapped sequence, if any.
func (r Result[T]) List() ([]T, bool) {
	return r.list, r.kind == kindList
}

// Err returns the wrapped error, or nil for non-error outcomes.
func (r Result[T]) Err() error {
	if r.kind != kindError {
		return nil
	}
	return r.err
}

// clone copies the list container so the cache and its callers never share
// a mutable slice. Records themselves are value types.
func (r Result[T]) clone() Result[T] {
	if r.kind != kindList {
		return r
	}
	return Result[T]{kind: kindList, list: append([]T(nil), r.list...)}
}

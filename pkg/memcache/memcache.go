// Package memcache provides a bounded in-memory LRU cache with composable
// expiration policies. Entries carry creation/access metadata so that a
// cold tier can restore them without resetting their lifecycle.
package memcache

import (
	"container/list"
	"math"
	"sync"
	"time"
)

// Entry is a cached value together with its lifecycle metadata. CreatedAt
// is immutable; AccessedAt and Hits are bumped on reads.
type Entry[V any] struct {
	Value      V         `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	AccessedAt time.Time `json:"accessed_at"`
	Hits       uint32    `json:"hits"`
}

type options struct {
	maxAgeCreation time.Duration
	maxAgeAccess   time.Duration
	maxHits        uint32
	now            func() time.Time
}

// Option tunes cache construction.
type Option func(*options)

// WithMaxAgeCreation expires entries older than d since creation.
func WithMaxAgeCreation(d time.Duration) Option {
	return func(o *options) { o.maxAgeCreation = d }
}

// WithMaxAgeAccess expires entries idle for longer than d.
func WithMaxAgeAccess(d time.Duration) Option {
	return func(o *options) { o.maxAgeAccess = d }
}

// WithMaxHits expires entries after n successful reads.
func WithMaxHits(n uint32) Option {
	return func(o *options) { o.maxHits = n }
}

// WithClock overrides the time source. Tests use it to step through
// expiration windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type item[K comparable, V any] struct {
	key   K
	entry Entry[V]
}

// Cache is a mutex-guarded LRU map of K to Entry[V]. The zero value is not
// usable; construct with New.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	opts     options
	order    *list.List // front is most recently used
	index    map[K]*list.Element
}

// New builds a cache holding at most capacity entries. Capacity must be
// positive.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity <= 0 {
		panic("memcache: capacity must be positive")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[K, V]{
		capacity: capacity,
		opts:     o,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// Insert stores value under key as a fresh entry. When the key already
// existed, or when the insert pushed the cache over capacity, the displaced
// key and entry are returned with ok=true.
func (c *Cache[K, V]) Insert(key K, value V) (K, Entry[V], bool) {
	now := c.opts.now()
	return c.InsertEntry(key, Entry[V]{Value: value, CreatedAt: now, AccessedAt: now})
}

// InsertEntry stores a pre-built entry, preserving its metadata. Used to
// restore entries from a colder tier. Displacement semantics match Insert.
func (c *Cache[K, V]) InsertEntry(key K, entry Entry[V]) (K, Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		old := el.Value.(*item[K, V]).entry
		el.Value.(*item[K, V]).entry = entry
		c.order.MoveToFront(el)
		return key, old, true
	}

	c.index[key] = c.order.PushFront(&item[K, V]{key: key, entry: entry})
	if c.order.Len() <= c.capacity {
		var zeroK K
		var zeroE Entry[V]
		return zeroK, zeroE, false
	}

	oldest := c.order.Back()
	evicted := oldest.Value.(*item[K, V])
	c.order.Remove(oldest)
	delete(c.index, evicted.key)
	return evicted.key, evicted.entry, true
}

// Get returns the live value under key. Expired entries are removed and
// reported as absent; live entries get their access metadata bumped.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*item[K, V])
	if c.expired(it.entry) {
		c.order.Remove(el)
		delete(c.index, key)
		return zero, false
	}
	c.touch(it)
	c.order.MoveToFront(el)
	return it.entry.Value, true
}

// Peek returns the value under key together with its expiration verdict.
// Unlike Get it never evicts; access metadata is still bumped. Callers use
// the expired flag to opt into stale reads.
func (c *Cache[K, V]) Peek(key K) (V, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false, false
	}
	it := el.Value.(*item[K, V])
	expired := c.expired(it.entry)
	c.touch(it)
	c.order.MoveToFront(el)
	return it.entry.Value, expired, true
}

// Contains reports presence without policy evaluation or metadata updates.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[key]
	return ok
}

// Len returns the number of resident entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[K, V]) touch(it *item[K, V]) {
	it.entry.AccessedAt = c.opts.now()
	if it.entry.Hits < math.MaxUint32 {
		it.entry.Hits++
	}
}

// expired evaluates the configured policies in order, short-circuiting on
// the first exceeded one.
func (c *Cache[K, V]) expired(e Entry[V]) bool {
	now := c.opts.now()
	if c.opts.maxAgeCreation > 0 && !e.CreatedAt.Add(c.opts.maxAgeCreation).After(now) {
		return true
	}
	if c.opts.maxAgeAccess > 0 && !e.AccessedAt.Add(c.opts.maxAgeAccess).After(now) {
		return true
	}
	if c.opts.maxHits > 0 && e.Hits >= c.opts.maxHits {
		return true
	}
	return false
}

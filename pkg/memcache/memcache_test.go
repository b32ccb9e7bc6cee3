package memcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)}
}

func TestInsertAndGet(t *testing.T) {
	cache := New[string, int](4)

	_, _, displaced := cache.Insert("a", 1)
	assert.False(t, displaced)

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCapacityKeepsMostRecent(t *testing.T) {
	cache := New[int, string](3)
	for i := 1; i <= 5; i++ {
		cache.Insert(i, fmt.Sprintf("v%d", i))
	}

	assert.Equal(t, 3, cache.Len())
	for _, evicted := range []int{1, 2} {
		assert.False(t, cache.Contains(evicted), "key %d should have been evicted", evicted)
	}
	for _, kept := range []int{3, 4, 5} {
		assert.True(t, cache.Contains(kept), "key %d should have survived", kept)
	}
}

func TestInsertReportsDisplacement(t *testing.T) {
	cache := New[string, int](2)

	_, _, displaced := cache.Insert("a", 1)
	assert.False(t, displaced)
	_, _, displaced = cache.Insert("b", 2)
	assert.False(t, displaced)

	key, entry, displaced := cache.Insert("c", 3)
	require.True(t, displaced)
	assert.Equal(t, "a", key)
	assert.Equal(t, 1, entry.Value)
}

func TestInsertSameKeyReturnsOldEntry(t *testing.T) {
	cache := New[string, int](2)
	cache.Insert("a", 1)

	key, entry, displaced := cache.Insert("a", 2)
	require.True(t, displaced)
	assert.Equal(t, "a", key)
	assert.Equal(t, 1, entry.Value)

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, cache.Len())
}

func TestGetRefreshesRecency(t *testing.T) {
	cache := New[int, string](2)
	cache.Insert(1, "one")
	cache.Insert(2, "two")

	_, ok := cache.Get(1)
	require.True(t, ok)

	cache.Insert(3, "three")

	assert.True(t, cache.Contains(1), "recently read key should survive")
	assert.False(t, cache.Contains(2))
	assert.True(t, cache.Contains(3))
}

func TestMaxAgeCreationExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := New[string, int](4,
		WithMaxAgeCreation(time.Hour),
		WithClock(clock.Now),
	)
	cache.Insert("a", 1)

	clock.Advance(59 * time.Minute)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.False(t, cache.Contains("a"), "expired entry should be removed on read")
}

func TestMaxAgeAccessExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := New[string, int](4,
		WithMaxAgeAccess(time.Hour),
		WithClock(clock.Now),
	)
	cache.Insert("a", 1)

	// Frequent reads keep the entry alive well past the idle window.
	for i := 0; i < 3; i++ {
		clock.Advance(45 * time.Minute)
		_, ok := cache.Get("a")
		require.True(t, ok, "read %d", i)
	}

	clock.Advance(61 * time.Minute)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestMaxHitsAllowsExactlyNReads(t *testing.T) {
	const maxHits = 3
	cache := New[string, int](4, WithMaxHits(maxHits))
	cache.Insert("a", 1)

	for i := 0; i < maxHits; i++ {
		_, ok := cache.Get("a")
		require.True(t, ok, "read %d should succeed", i+1)
	}

	_, ok := cache.Get("a")
	assert.False(t, ok, "read %d should find the entry expired", maxHits+1)
}

func TestPoliciesCombineWithOr(t *testing.T) {
	clock := newFakeClock()
	cache := New[string, int](4,
		WithMaxAgeCreation(time.Hour),
		WithMaxHits(10),
		WithClock(clock.Now),
	)
	cache.Insert("a", 1)

	// Far below the hit budget, but past the creation age.
	_, ok := cache.Get("a")
	require.True(t, ok)
	clock.Advance(2 * time.Hour)
	_, ok = cache.Get("a")
	assert.False(t, ok)
}

func TestPeekReportsExpiredWithoutEvicting(t *testing.T) {
	clock := newFakeClock()
	cache := New[string, int](4,
		WithMaxAgeCreation(time.Hour),
		WithClock(clock.Now),
	)
	cache.Insert("a", 1)

	got, expired, ok := cache.Peek("a")
	require.True(t, ok)
	assert.False(t, expired)
	assert.Equal(t, 1, got)

	clock.Advance(2 * time.Hour)
	got, expired, ok = cache.Peek("a")
	require.True(t, ok)
	assert.True(t, expired)
	assert.Equal(t, 1, got)
	assert.True(t, cache.Contains("a"), "peek should never evict")

	_, _, ok = cache.Peek("missing")
	assert.False(t, ok)
}

func TestInsertEntryPreservesMetadata(t *testing.T) {
	clock := newFakeClock()
	cache := New[string, int](4,
		WithMaxAgeCreation(time.Hour),
		WithClock(clock.Now),
	)

	createdAt := clock.Now().Add(-50 * time.Minute)
	cache.InsertEntry("a", Entry[int]{
		Value:      1,
		CreatedAt:  createdAt,
		AccessedAt: createdAt,
		Hits:       2,
	})

	// The restored entry expires on its original schedule, not the
	// insertion time.
	clock.Advance(15 * time.Minute)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestDisplacedEntryKeepsMetadata(t *testing.T) {
	cache := New[string, int](1)
	cache.Insert("a", 1)
	_, okA := cache.Get("a")
	require.True(t, okA)

	key, entry, displaced := cache.Insert("b", 2)
	require.True(t, displaced)
	assert.Equal(t, "a", key)
	assert.Equal(t, uint32(1), entry.Hits, "displaced entry should carry its hit count")
}

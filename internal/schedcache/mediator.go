package schedcache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/blobstore"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/memcache"
)

// Mediator presents the LRU and the blob store as one logical cache tier.
// Misses in memory are restored from disk with their metadata intact;
// entries displaced from memory are written back so their usage history
// survives. Storage failures degrade to cache misses and are only logged.
type Mediator struct {
	mem    *memcache.Cache[Key, models.Schedule]
	disk   blobstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewMediator wires the two tiers together.
func NewMediator(mem *memcache.Cache[Key, models.Schedule], disk blobstore.Store, logger *zap.Logger) *Mediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mediator{mem: mem, disk: disk, logger: logger, now: time.Now}
}

// Get returns the cached schedule under key. Expired entries are returned
// only when allowStale is set; they are never evicted here, so a later
// stale read can still find them.
func (m *Mediator) Get(ctx context.Context, key Key, allowStale bool) (models.Schedule, bool) {
	if !m.mem.Contains(key) {
		m.restore(ctx, key)
	}
	value, expired, ok := m.mem.Peek(key)
	if !ok || (expired && !allowStale) {
		return models.Schedule{}, false
	}
	return value, true
}

// Insert stores a freshly fetched schedule: write-through to disk first,
// then into the LRU. An entry the LRU displaces in the process is demoted
// back to disk with its current metadata.
func (m *Mediator) Insert(ctx context.Context, key Key, schedule models.Schedule) {
	now := m.now()
	entry := memcache.Entry[models.Schedule]{Value: schedule, CreatedAt: now, AccessedAt: now}
	m.demote(ctx, key, entry)

	displacedKey, displaced, ok := m.mem.InsertEntry(key, entry)
	// A same-key replacement needs no write-back: the fresh copy is
	// already on disk.
	if ok && displacedKey != key {
		m.demote(ctx, displacedKey, displaced)
	}
}

// restore promotes the on-disk entry under key into the LRU. Absence and
// decode failures are both treated as a miss.
func (m *Mediator) restore(ctx context.Context, key Key) {
	blob, err := m.disk.Get(ctx, key.String())
	if err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			m.logger.Warn("failed to read schedule cache blob",
				zap.String("key", key.String()),
				zap.Error(err))
		}
		return
	}
	entry, err := decodeEntry(blob)
	if err != nil {
		m.logger.Warn("failed to decode schedule cache blob",
			zap.String("key", key.String()),
			zap.Error(err))
		return
	}
	displacedKey, displaced, ok := m.mem.InsertEntry(key, entry)
	if ok && displacedKey != key {
		m.demote(ctx, displacedKey, displaced)
	}
}

func (m *Mediator) demote(ctx context.Context, key Key, entry memcache.Entry[models.Schedule]) {
	blob, err := encodeEntry(entry)
	if err != nil {
		m.logger.Warn("failed to encode schedule cache entry",
			zap.String("key", key.String()),
			zap.Error(err))
		return
	}
	if err := m.disk.Put(ctx, key.String(), blob); err != nil {
		m.logger.Warn("failed to write schedule cache blob",
			zap.String("key", key.String()),
			zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/memcache"
)

// scheduleSearcher is the slice of the provider client the resolver needs.
type scheduleSearcher interface {
	Search(ctx context.Context, term string, typ models.ScheduleType) ([]upstream.SearchResult, error)
}

type idCacheKey struct {
	name string
	typ  models.ScheduleType
}

// IdResolver translates schedule names into provider ids. Resolved pairs
// are cached; ids change rarely, so the cache both ages out and caps the
// number of reads per entry.
type IdResolver struct {
	upstream scheduleSearcher
	cache    *memcache.Cache[idCacheKey, int64]
	logger   *zap.Logger
}

// NewIdResolver builds a resolver with the given cache geometry.
func NewIdResolver(searcher scheduleSearcher, capacity int, lifetime time.Duration, maxHits uint32, logger *zap.Logger) *IdResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdResolver{
		upstream: searcher,
		cache: memcache.New[idCacheKey, int64](capacity,
			memcache.WithMaxAgeCreation(lifetime),
			memcache.WithMaxHits(maxHits)),
		logger: logger,
	}
}

// Resolve returns the provider id of the named schedule. The first search
// result counts only when its label fuzzy-matches the requested name;
// anything else is reported as not found.
func (r *IdResolver) Resolve(ctx context.Context, name models.ScheduleName) (int64, error) {
	key := idCacheKey{name: name.String(), typ: name.Type()}
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	results, err := r.upstream.Search(ctx, name.String(), name.Type())
	if err != nil {
		return 0, err
	}
	if len(results) == 0 || !models.FuzzyEqual(results[0].Label, name.String()) {
		return 0, appErrors.Userf("schedule %q not found", name.String())
	}

	id := results[0].ID
	r.cache.Insert(key, id)
	r.logger.Debug("resolved schedule id",
		zap.String("name", name.String()),
		zap.String("type", string(name.Type())),
		zap.Int64("id", id))
	return id, nil
}

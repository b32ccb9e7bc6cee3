package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/memcache"
)

// searchStore is the relational fallback index.
type searchStore interface {
	Upsert(ctx context.Context, results []models.SearchResult) error
	Select(ctx context.Context, query models.ScheduleSearchQuery, typ *models.ScheduleType) ([]models.SearchResult, error)
}

type searchCacheKey struct {
	query string
	typ   string
}

// SearchService finds schedules by a free-text query. Successful provider
// responses are mirrored into the relational store, which keeps search
// working while the provider is down; an in-memory cache absorbs repeats.
type SearchService struct {
	upstream scheduleSearcher
	repo     searchStore
	cache    *memcache.Cache[searchCacheKey, []models.SearchResult]
	logger   *zap.Logger
}

// NewSearchService builds the search path with the given cache geometry.
func NewSearchService(searcher scheduleSearcher, repo searchStore, capacity int, lifetime time.Duration, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		upstream: searcher,
		repo:     repo,
		cache: memcache.New[searchCacheKey, []models.SearchResult](capacity,
			memcache.WithMaxAgeCreation(lifetime)),
		logger: logger,
	}
}

// Search returns schedules matching the query, best match first. A nil
// type searches groups and persons together.
func (s *SearchService) Search(ctx context.Context, rawQuery string, typ *models.ScheduleType) ([]models.SearchResult, error) {
	query, err := models.NewScheduleSearchQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	key := searchCacheKey{query: query.String()}
	if typ != nil {
		key.typ = string(*typ)
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	remote := s.searchRemote(ctx, query, typ)
	if len(remote) > 0 {
		if err := s.repo.Upsert(ctx, remote); err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.Select(ctx, query, typ)
	if err != nil {
		return nil, err
	}

	ranked := rankSearchResults(rows, query.String())
	s.cache.Insert(key, ranked)
	return ranked, nil
}

// searchRemote queries the provider, merging group and person results for
// untyped searches. Provider failures are logged and swallowed; the
// relational fallback still answers.
func (s *SearchService) searchRemote(ctx context.Context, query models.ScheduleSearchQuery, typ *models.ScheduleType) []models.SearchResult {
	types := []models.ScheduleType{models.ScheduleTypeGroup, models.ScheduleTypePerson}
	if typ != nil {
		types = []models.ScheduleType{*typ}
	}

	var merged []models.SearchResult
	for _, t := range types {
		raw, err := s.upstream.Search(ctx, query.String(), t)
		if err != nil {
			s.logger.Warn("provider search failed",
				zap.String("query", query.String()),
				zap.String("type", string(t)),
				zap.Error(err))
			continue
		}
		merged = append(merged, s.toSearchResults(raw)...)
	}
	return merged
}

func (s *SearchService) toSearchResults(raw []upstream.SearchResult) []models.SearchResult {
	return lo.FilterMap(raw, func(r upstream.SearchResult, _ int) (models.SearchResult, bool) {
		typ, err := models.ParseScheduleType(r.Type)
		if err != nil {
			s.logger.Warn("provider returned an unknown schedule type",
				zap.String("type", r.Type),
				zap.Int64("id", r.ID))
			return models.SearchResult{}, false
		}
		return models.SearchResult{
			ID:          r.ID,
			Name:        r.Label,
			Description: r.Description,
			Type:        typ,
		}, true
	})
}

// rankSearchResults orders rows by the earliest occurrence of the query in
// the lowercased name, measured in characters. Rows without a match sink
// to the back, keeping their relative order.
func rankSearchResults(rows []models.SearchResult, query string) []models.SearchResult {
	q := strings.ToLower(query)
	limit := len(rows)
	score := func(r models.SearchResult) int {
		name := strings.ToLower(r.Name)
		idx := strings.Index(name, q)
		if idx < 0 {
			return limit
		}
		return min(utf8.RuneCountInString(name[:idx]), limit)
	}
	sort.SliceStable(rows, func(i, j int) bool { return score(rows[i]) < score(rows[j]) })
	return rows
}

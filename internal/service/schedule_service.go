package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/calendar"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/schedcache"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

// maxWeekOffset keeps offset*7 clear of int32 day arithmetic.
const maxWeekOffset = math.MaxInt32 / 7

// scheduleFetcher is the slice of the provider client the service needs.
type scheduleFetcher interface {
	GetSchedule(ctx context.Context, typ models.ScheduleType, id int64, start, end models.Date) ([]upstream.Class, error)
}

// idResolver resolves a validated name to the provider id.
type idResolver interface {
	Resolve(ctx context.Context, name models.ScheduleName) (int64, error)
}

// semesterCalendar answers week-of-semester queries.
type semesterCalendar interface {
	WeekOfSemester(weekStart models.Date) int8
}

// scheduleCache is the mediated two-tier cache.
type scheduleCache interface {
	Get(ctx context.Context, key schedcache.Key, allowStale bool) (models.Schedule, bool)
	Insert(ctx context.Context, key schedcache.Key, schedule models.Schedule)
}

// ScheduleService serves one week of a schedule, preferring the cache and
// falling back to stale entries when the provider is down.
type ScheduleService struct {
	cache    scheduleCache
	resolver idResolver
	upstream scheduleFetcher
	calendar semesterCalendar
	cooldown *Cooldown
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduleService wires the schedule read path together.
func NewScheduleService(
	cache scheduleCache,
	resolver idResolver,
	fetcher scheduleFetcher,
	cal semesterCalendar,
	cooldown *Cooldown,
	metrics *MetricsService,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		cache:    cache,
		resolver: resolver,
		upstream: fetcher,
		calendar: cal,
		cooldown: cooldown,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// GetSchedule returns the week at the given offset from the current one.
// The result always contains exactly one week.
func (s *ScheduleService) GetSchedule(ctx context.Context, rawName string, typ models.ScheduleType, offset int) (models.Schedule, error) {
	name, err := models.NewScheduleName(rawName, typ)
	if err != nil {
		return models.Schedule{}, err
	}
	if offset <= -maxWeekOffset || offset >= maxWeekOffset {
		return models.Schedule{}, appErrors.Userf("week offset %d is out of range", offset)
	}

	today := models.DateOf(s.now().In(calendar.Moscow()))
	weekStart := today.AddDays(offset * 7).MondayOf()
	weekOfSemester := s.calendar.WeekOfSemester(weekStart)
	key := schedcache.NewKey(name, weekStart)

	// Past weeks never change, and an active cooldown means the provider
	// failed moments ago; either way an expired entry beats the network.
	allowStale := weekStart.AddDays(6).Before(today) || s.cooldown.Active()

	// Blobs written by older deployments may carry a different week
	// shape; those read as misses and get refetched.
	if cached, ok := s.cache.Get(ctx, key, allowStale); ok && len(cached.Weeks) == 1 {
		s.metrics.RecordScheduleCache(true)
		return s.repairShift(ctx, key, cached, weekOfSemester), nil
	}
	s.metrics.RecordScheduleCache(false)

	id, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return models.Schedule{}, err
	}

	fresh, err := s.fetchFresh(ctx, name, id, weekStart, weekOfSemester)
	if err != nil {
		if appErrors.IsGateway(err) {
			s.cooldown.Engage()
			s.metrics.RecordCooldownEngaged()
			if !allowStale {
				if cached, ok := s.cache.Get(ctx, key, true); ok && len(cached.Weeks) == 1 {
					s.logger.Warn("serving stale schedule, provider is down",
						zap.String("key", key.String()),
						zap.Error(err))
					return s.repairShift(ctx, key, cached, weekOfSemester), nil
				}
			}
		}
		return models.Schedule{}, err
	}

	s.cache.Insert(ctx, key, fresh)
	return fresh, nil
}

func (s *ScheduleService) fetchFresh(ctx context.Context, name models.ScheduleName, id int64, weekStart models.Date, weekOfSemester int8) (models.Schedule, error) {
	raw, err := s.upstream.GetSchedule(ctx, name.Type(), id, weekStart, weekStart.AddDays(6))
	if err != nil {
		return models.Schedule{}, err
	}
	return mapSchedule(name, id, weekStart, weekOfSemester, raw)
}

// repairShift rewrites the cached week-of-semester when the calendar
// disagrees with it, e.g. after a shift-file edit, and re-inserts the
// repaired schedule.
func (s *ScheduleService) repairShift(ctx context.Context, key schedcache.Key, cached models.Schedule, weekOfSemester int8) models.Schedule {
	if len(cached.Weeks) != 1 || cached.Weeks[0].WeekOfSemester == weekOfSemester {
		return cached
	}
	cached.Weeks[0].WeekOfSemester = weekOfSemester
	s.cache.Insert(ctx, key, cached)
	return cached
}

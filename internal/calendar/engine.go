// Package calendar computes the 1-based week number within a semester for
// a given week, following the university calendar: fall counts from the
// week of September 1, spring from the first Monday of February, with
// per-year overrides read from a TOML shift file.
package calendar

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// NonStudyingWeek marks weeks outside any semester.
const NonStudyingWeek int8 = -1

// maxSemesterWeeks bounds a semester; week numbers past it are vacation
// or an exam session.
const maxSemesterWeeks = 18

// Semester names one of the two teaching periods of a year.
type Semester string

const (
	SemesterSpring Semester = "spring"
	SemesterFall   Semester = "fall"
)

type shiftKey struct {
	Year     int
	Semester Semester
}

type shiftRule struct {
	FirstDay   models.Date
	WeekNumber int
}

const shiftRulesCacheKey = "shift-rules"

// Engine answers week-of-semester queries. The shift file is re-read
// lazily with a short TTL so edits take effect without a restart.
type Engine struct {
	fs         afero.Fs
	configPath string
	rulesCache *gocache.Cache
	logger     *zap.Logger
}

// NewEngine builds an engine reading the shift file from the OS filesystem.
func NewEngine(configPath string, logger *zap.Logger) *Engine {
	return NewEngineWithFs(afero.NewOsFs(), configPath, logger)
}

// NewEngineWithFs is like NewEngine but over an explicit afero filesystem.
func NewEngineWithFs(fs afero.Fs, configPath string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fs:         fs,
		configPath: configPath,
		rulesCache: gocache.New(time.Minute, 5*time.Minute),
		logger:     logger,
	}
}

// WeekOfSemester returns the 1-based number of the week opening at the
// given Monday, or NonStudyingWeek when it falls outside a semester.
func (e *Engine) WeekOfSemester(weekStart models.Date) int8 {
	var semester Semester
	switch month := weekStart.Month(); {
	case month == time.July || month == time.August:
		return NonStudyingWeek
	case month >= time.September:
		semester = SemesterFall
	default:
		semester = SemesterSpring
	}

	year := weekStart.Year()
	refWeek, refNumber := e.reference(year, semester)
	week := isoWeekNumber(weekStart) - refWeek + refNumber
	if week < 1 || week > maxSemesterWeeks {
		return NonStudyingWeek
	}
	return int8(week)
}

// reference returns the ISO week anchoring the semester and the week
// number assigned to it.
func (e *Engine) reference(year int, semester Semester) (refWeek, refNumber int) {
	if rule, ok := e.rules()[shiftKey{Year: year, Semester: semester}]; ok {
		return isoWeekNumber(rule.FirstDay), rule.WeekNumber
	}

	switch semester {
	case SemesterFall:
		// The week containing September 1 is week 1, unless September 1
		// is a Sunday; then the semester opens the next day.
		ref := models.NewDate(year, time.September, 1)
		if ref.Weekday1to7() == 7 {
			ref = ref.AddDays(1)
		}
		return isoWeekNumber(ref), 1
	default:
		// First Monday on or after February 1.
		feb1 := models.NewDate(year, time.February, 1)
		ref := feb1.AddDays((8 - feb1.Weekday1to7()) % 7)
		return isoWeekNumber(ref), 1
	}
}

func (e *Engine) rules() map[shiftKey]shiftRule {
	if cached, ok := e.rulesCache.Get(shiftRulesCacheKey); ok {
		return cached.(map[shiftKey]shiftRule)
	}

	rules, err := loadShiftRules(e.fs, e.configPath)
	if err != nil {
		e.logger.Warn("failed to load schedule shift config, using defaults",
			zap.String("path", e.configPath),
			zap.Error(err))
		rules = map[shiftKey]shiftRule{}
	}
	e.rulesCache.Set(shiftRulesCacheKey, rules, gocache.DefaultExpiration)
	return rules
}

type shiftFileRule struct {
	FirstDay   string `toml:"first-day"`
	WeekNumber *int   `toml:"week-number"`
}

type shiftFileYear struct {
	Spring *shiftFileRule `toml:"spring"`
	Fall   *shiftFileRule `toml:"fall"`
}

// loadShiftRules parses the shift file. A missing file is not an error;
// defaults simply apply. A rule whose first-day falls outside its year key
// rejects the whole file.
func loadShiftRules(fs afero.Fs, path string) (map[shiftKey]shiftRule, error) {
	rules := make(map[shiftKey]shiftRule)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return nil, fmt.Errorf("read shift config: %w", err)
	}

	var file map[string]shiftFileYear
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse shift config: %w", err)
	}

	for yearKey, overrides := range file {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			return nil, fmt.Errorf("shift config: year key %q is not a number", yearKey)
		}
		for semester, raw := range map[Semester]*shiftFileRule{
			SemesterSpring: overrides.Spring,
			SemesterFall:   overrides.Fall,
		} {
			if raw == nil {
				continue
			}
			firstDay, err := models.ParseDate(raw.FirstDay)
			if err != nil {
				return nil, fmt.Errorf("shift config %d/%s: %w", year, semester, err)
			}
			if firstDay.Year() != year {
				return nil, fmt.Errorf("shift config %d/%s: first-day %s is outside year %d",
					year, semester, firstDay, year)
			}
			weekNumber := 1
			if raw.WeekNumber != nil {
				weekNumber = *raw.WeekNumber
			}
			rules[shiftKey{Year: year, Semester: semester}] = shiftRule{
				FirstDay:   firstDay,
				WeekNumber: weekNumber,
			}
		}
	}
	return rules, nil
}

func isoWeekNumber(d models.Date) int {
	_, week := d.ISOWeek()
	return week
}

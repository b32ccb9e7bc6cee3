package bot

import (
	"time"

	"github.com/samber/lo"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// UpcomingEvents describes the nearest classes relative to a moment.
// The set is closed; the renderer switches over it.
type UpcomingEvents interface {
	isUpcoming()
}

// NoUpcomingClasses means the scanned weeks hold nothing ahead.
type NoUpcomingClasses struct{}

// ClassesToday means the nearest classes are today: InProgress straddle
// now, Future start later. WaitFor is the time until the first future
// class and is zero when something is already in progress.
type ClassesToday struct {
	InProgress []models.Classes
	Future     []models.Classes
	WaitFor    time.Duration
}

// ClassesOnAnotherDay means the nearest classes are on a later date.
type ClassesOnAnotherDay struct {
	Day     models.Day
	WaitFor time.Duration
}

func (NoUpcomingClasses) isUpcoming()   {}
func (ClassesToday) isUpcoming()        {}
func (ClassesOnAnotherDay) isUpcoming() {}

// buildUpcoming scans the given weeks, already sorted by date, for the
// first day that still has classes ahead of now. A day counts as ahead
// when it is past today, or is today and some class has not ended yet.
func buildUpcoming(now time.Time, weeks []models.Week) UpcomingEvents {
	today := models.DateOf(now)
	clock := models.ClockOf(now)

	var next *models.Day
	for wi := range weeks {
		for di := range weeks[wi].Days {
			day := &weeks[wi].Days[di]
			if len(day.Classes) == 0 || day.Date.Before(today) {
				continue
			}
			if day.Date.Equal(today) && !lo.SomeBy(day.Classes, func(c models.Classes) bool {
				return c.Time.End.After(clock)
			}) {
				continue
			}
			next = day
			break
		}
		if next != nil {
			break
		}
	}
	if next == nil {
		return NoUpcomingClasses{}
	}

	if !next.Date.Equal(today) {
		first := next.Classes[0]
		return ClassesOnAnotherDay{
			Day:     *next,
			WaitFor: next.Date.At(first.Time.Start, now.Location()).Sub(now),
		}
	}

	var inProgress, future []models.Classes
	for _, c := range next.Classes {
		switch {
		case !c.Time.End.After(clock):
			// already over
		case c.Time.Start.After(clock):
			future = append(future, c)
		default:
			inProgress = append(inProgress, c)
		}
	}
	if len(inProgress) > 0 {
		return ClassesToday{InProgress: inProgress, Future: future}
	}
	return ClassesToday{Future: future, WaitFor: future[0].Time.Start.Sub(clock)}
}

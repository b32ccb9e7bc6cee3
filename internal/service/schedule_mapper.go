package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

const classDateLayout = "2006.01.02"

// mapSchedule assembles the domain schedule for one week out of the
// provider's flat class list. Classes dated outside the requested week are
// dropped; malformed dates or times fail the whole mapping.
func mapSchedule(name models.ScheduleName, id int64, weekStart models.Date, weekOfSemester int8, raw []upstream.Class) (models.Schedule, error) {
	week, err := buildWeek(weekStart, weekOfSemester, raw)
	if err != nil {
		return models.Schedule{}, err
	}
	return models.Schedule{
		ID:    id,
		Name:  name.String(),
		Type:  name.Type(),
		Weeks: []models.Week{week},
	}, nil
}

func buildWeek(weekStart models.Date, weekOfSemester int8, raw []upstream.Class) (models.Week, error) {
	weekEnd := weekStart.AddDays(6)

	byDate := lo.GroupBy(raw, func(class upstream.Class) string { return class.Date })

	days := make([]models.Day, 0, len(byDate))
	for _, rawDate := range lo.Keys(byDate) {
		date, err := parseClassDate(rawDate)
		if err != nil {
			return models.Week{}, appErrors.Internal(err, "provider returned a malformed class date")
		}
		if date.Before(weekStart) || date.After(weekEnd) {
			continue
		}

		classes := make([]models.Classes, 0, len(byDate[rawDate]))
		for _, class := range byDate[rawDate] {
			mapped, err := mapClass(class)
			if err != nil {
				return models.Week{}, err
			}
			classes = append(classes, mapped)
		}
		sort.SliceStable(classes, func(i, j int) bool {
			return classes[i].Time.Start.Before(classes[j].Time.Start)
		})

		days = append(days, models.Day{
			DayOfWeek: uint8(date.Weekday1to7()),
			Date:      date,
			Classes:   classes,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	_, weekOfYear := weekStart.ISOWeek()
	return models.Week{
		WeekOfYear:     uint8(weekOfYear),
		WeekOfSemester: weekOfSemester,
		FirstDayOfWeek: weekStart,
		Days:           days,
	}, nil
}

func mapClass(class upstream.Class) (models.Classes, error) {
	start, err := models.ParseClockTime(class.BeginLesson)
	if err != nil {
		return models.Classes{}, appErrors.Internal(err, "provider returned a malformed class start time")
	}
	end, err := models.ParseClockTime(class.EndLesson)
	if err != nil {
		return models.Classes{}, appErrors.Internal(err, "provider returned a malformed class end time")
	}

	groups := class.Group
	if groups == "" {
		groups = class.Stream
	}
	if class.SubGroup != "" {
		groups = strings.TrimSpace(groups + " " + class.SubGroup)
	}

	return models.Classes{
		Name:    class.Discipline,
		Type:    models.ClassifyClassesType(class.KindOfWork),
		RawType: class.KindOfWork,
		Place:   class.Auditorium,
		Groups:  groups,
		Person:  class.Lecturer,
		Time:    models.ClassesTime{Start: start, End: end},
		Number:  models.ClassNumber(start),
	}, nil
}

func parseClassDate(s string) (models.Date, error) {
	t, err := time.Parse(classDateLayout, s)
	if err != nil {
		return models.Date{}, fmt.Errorf("parse class date %q: %w", s, err)
	}
	return models.DateOf(t), nil
}

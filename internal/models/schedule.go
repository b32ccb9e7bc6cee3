package models

import (
	"fmt"
	"strings"

	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

// ScheduleType names the kind of entity a schedule belongs to. Its string
// form is the lowercased variant name and is used in URLs, cache keys and
// persisted rows; the JSON form is SCREAMING_SNAKE_CASE.
type ScheduleType string

const (
	ScheduleTypeGroup  ScheduleType = "group"
	ScheduleTypePerson ScheduleType = "person"
	ScheduleTypeRoom   ScheduleType = "room"
)

// ParseScheduleType accepts the lowercase path form and the uppercase wire
// form of a schedule type.
func ParseScheduleType(s string) (ScheduleType, error) {
	switch strings.ToLower(s) {
	case "group":
		return ScheduleTypeGroup, nil
	case "person":
		return ScheduleTypePerson, nil
	case "room":
		return ScheduleTypeRoom, nil
	}
	return "", appErrors.NotFound(fmt.Sprintf("unknown schedule type %q", s))
}

func (t ScheduleType) String() string { return string(t) }

// MarshalJSON renders the SCREAMING_SNAKE_CASE wire form.
func (t ScheduleType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(string(t)) + `"`), nil
}

// UnmarshalJSON accepts both the wire and the path form.
func (t *ScheduleType) UnmarshalJSON(data []byte) error {
	parsed, err := ParseScheduleType(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ClassesType is the classified kind of a single class.
type ClassesType string

const (
	ClassesTypeUndefined    ClassesType = "UNDEFINED"
	ClassesTypeLecture      ClassesType = "LECTURE"
	ClassesTypeLab          ClassesType = "LAB"
	ClassesTypePractice     ClassesType = "PRACTICE"
	ClassesTypeCourse       ClassesType = "COURSE"
	ClassesTypeExam         ClassesType = "EXAM"
	ClassesTypeConsultation ClassesType = "CONSULTATION"
)

// classKindMarkers is checked in order; the first matching substring wins.
var classKindMarkers = []struct {
	marker string
	typ    ClassesType
}{
	{"лек", ClassesTypeLecture},
	{"лаб", ClassesTypeLab},
	{"прак", ClassesTypePractice},
	{"курс", ClassesTypeCourse},
	{"кп", ClassesTypeCourse},
	{"экз", ClassesTypeExam},
	{"консул", ClassesTypeConsultation},
}

// ClassifyClassesType maps a raw upstream kind-of-work label to a
// ClassesType by case-insensitive substring match.
func ClassifyClassesType(raw string) ClassesType {
	lower := strings.ToLower(raw)
	for _, m := range classKindMarkers {
		if strings.Contains(lower, m.marker) {
			return m.typ
		}
	}
	return ClassesTypeUndefined
}

// classNumberByStart maps the seven canonical class start times to their
// ordinal within the day.
var classNumberByStart = map[ClockTime]int8{
	{Hour: 9, Minute: 20}:  1,
	{Hour: 11, Minute: 10}: 2,
	{Hour: 13, Minute: 45}: 3,
	{Hour: 15, Minute: 35}: 4,
	{Hour: 17, Minute: 20}: 5,
	{Hour: 18, Minute: 55}: 6,
	{Hour: 20, Minute: 30}: 7,
}

// ClassNumber returns the ordinal of a class by its start time, or -1 for
// non-canonical starts.
func ClassNumber(start ClockTime) int8 {
	if n, ok := classNumberByStart[ClockTime{Hour: start.Hour, Minute: start.Minute}]; ok {
		return n
	}
	return -1
}

// ClassesTime is the start/end pair of a class.
type ClassesTime struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Classes is one class entry of a schedule day.
type Classes struct {
	Name    string      `json:"name"`
	Type    ClassesType `json:"type"`
	RawType string      `json:"rawType"`
	Place   string      `json:"place"`
	Groups  string      `json:"groups"`
	Person  string      `json:"person"`
	Time    ClassesTime `json:"time"`
	Number  int8        `json:"number"`
}

// Day is one day of a schedule week. Days without classes are omitted from
// a Week, so DayOfWeek is carried explicitly.
type Day struct {
	DayOfWeek uint8     `json:"dayOfWeek"`
	Date      Date      `json:"date"`
	Classes   []Classes `json:"classes"`
}

// Week is a single week of a schedule. WeekOfSemester is -1 outside the
// studying range.
type Week struct {
	WeekOfYear     uint8 `json:"weekOfYear"`
	WeekOfSemester int8  `json:"weekOfSemester"`
	FirstDayOfWeek Date  `json:"firstDayOfWeek"`
	Days           []Day `json:"days"`
}

// Schedule is the one-week timetable of a single entity. The service
// always returns exactly one week per request.
type Schedule struct {
	ID    int64        `json:"id,string"`
	Name  string       `json:"name"`
	Type  ScheduleType `json:"type"`
	Weeks []Week       `json:"weeks"`
}

// DowngradeClassTypes rewrites EXAM and CONSULTATION classes to UNDEFINED.
// Clients older than app major version 2 do not know these variants.
func (s *Schedule) DowngradeClassTypes() {
	for wi := range s.Weeks {
		for di := range s.Weeks[wi].Days {
			for ci := range s.Weeks[wi].Days[di].Classes {
				c := &s.Weeks[wi].Days[di].Classes[ci]
				if c.Type == ClassesTypeExam || c.Type == ClassesTypeConsultation {
					c.Type = ClassesTypeUndefined
				}
			}
		}
	}
}

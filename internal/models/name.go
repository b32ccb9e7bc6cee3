package models

import (
	"regexp"
	"strings"

	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

var (
	groupNameRe = regexp.MustCompile(`^[A-Za-zА-Яа-я0-9-]{5,20}$`)
	// Short form like "С-1-16": a single digit between the first and
	// second dash. Matching names get a zero inserted after the first
	// dash. Double-digit middles are left untouched.
	shortGroupRe = regexp.MustCompile(`^.*-\d[^0-9]*-.*$`)
	personNameRe = regexp.MustCompile(`^[А-Яа-яЁё]+([ -][А-Яа-яЁё]+){0,4}$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ScheduleName is a validated, normalized schedule entity name. Group
// names are uppercased and padded to the long form; person names are
// stored verbatim after validation.
type ScheduleName struct {
	value string
	typ   ScheduleType
}

// NewScheduleName validates raw against the rules of the given type and
// returns the normalized name.
func NewScheduleName(raw string, typ ScheduleType) (ScheduleName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ScheduleName{}, appErrors.User("schedule name must not be empty")
	}
	switch typ {
	case ScheduleTypeGroup:
		upper := strings.ToUpper(trimmed)
		if !groupNameRe.MatchString(upper) {
			return ScheduleName{}, appErrors.Userf("invalid group name %q", raw)
		}
		if shortGroupRe.MatchString(upper) {
			dash := strings.IndexByte(upper, '-')
			upper = upper[:dash+1] + "0" + upper[dash+1:]
		}
		return ScheduleName{value: upper, typ: typ}, nil
	case ScheduleTypePerson:
		if !personNameRe.MatchString(trimmed) {
			return ScheduleName{}, appErrors.Userf("invalid person name %q", raw)
		}
		return ScheduleName{value: trimmed, typ: typ}, nil
	case ScheduleTypeRoom:
		return ScheduleName{}, appErrors.User("room schedules are not supported yet")
	}
	return ScheduleName{}, appErrors.Userf("unknown schedule type %q", typ)
}

func (n ScheduleName) String() string     { return n.value }
func (n ScheduleName) Type() ScheduleType { return n.typ }

// FuzzyEqual compares two strings case-insensitively with runs of
// whitespace collapsed to single spaces.
func FuzzyEqual(a, b string) bool {
	return fuzzyFold(a) == fuzzyFold(b)
}

func fuzzyFold(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

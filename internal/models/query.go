package models

import (
	"unicode/utf8"

	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

const (
	searchQueryMinLen = 2
	searchQueryMaxLen = 50
)

// ScheduleSearchQuery is a validated free-text search query: trimmed,
// inner whitespace collapsed, character length within [2, 50].
type ScheduleSearchQuery struct {
	value string
}

// NewScheduleSearchQuery normalizes and validates a raw query.
func NewScheduleSearchQuery(raw string) (ScheduleSearchQuery, error) {
	normalized := whitespaceRe.ReplaceAllString(raw, " ")
	if len(normalized) > 0 && normalized[0] == ' ' {
		normalized = normalized[1:]
	}
	if n := len(normalized); n > 0 && normalized[n-1] == ' ' {
		normalized = normalized[:n-1]
	}
	length := utf8.RuneCountInString(normalized)
	if length < searchQueryMinLen {
		return ScheduleSearchQuery{}, appErrors.User("search query is too short")
	}
	if length > searchQueryMaxLen {
		return ScheduleSearchQuery{}, appErrors.User("search query is too long")
	}
	return ScheduleSearchQuery{value: normalized}, nil
}

func (q ScheduleSearchQuery) String() string { return q.value }

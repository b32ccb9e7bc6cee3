// Package schedcache implements the two-tier schedule cache: a bounded LRU
// in front of a persistent blob store, coordinated by a mediator with
// promote-on-miss and demote-on-evict semantics.
package schedcache

import (
	"fmt"
	"strings"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// Key identifies one week of one schedule. Keys built from the same logical
// schedule are byte-identical regardless of how the name was typed.
type Key struct {
	Name      string
	Type      models.ScheduleType
	WeekStart models.Date
}

// NewKey builds a cache key from a validated schedule name and the Monday
// opening the requested week.
func NewKey(name models.ScheduleName, weekStart models.Date) Key {
	return Key{
		Name:      strings.ToUpper(name.String()),
		Type:      name.Type(),
		WeekStart: weekStart,
	}
}

// String renders the on-disk form, "{year}/{type} {NAME} [{YYYY-MM-DD}].cache".
func (k Key) String() string {
	return fmt.Sprintf("%d/%s %s [%s].cache", k.WeekStart.Year(), k.Type, k.Name, k.WeekStart)
}

package models

import "time"

// SearchResult is one row of the search answer. Row identity is the
// upstream numeric id; the wire form carries it as a string.
type SearchResult struct {
	ID          int64        `db:"id" json:"id,string"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Type        ScheduleType `db:"type" json:"type"`
	UpdatedAt   time.Time    `db:"updated_at" json:"-"`
}

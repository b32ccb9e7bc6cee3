package bot

import (
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// Reply is what the dialogue decided to answer. The renderer turns it
// into platform text; the set is closed.
type Reply interface {
	isReply()
}

// GreetingReply opens the very first conversation with a peer.
type GreetingReply struct{}

// ReadyToChangeReply prompts the peer to type a schedule name.
type ReadyToChangeReply struct{}

// AlreadyStartedReply answers a repeated "start" from a known peer.
type AlreadyStartedReply struct {
	ScheduleName string
}

// ScheduleChosenReply confirms a successful schedule change.
type ScheduleChosenReply struct {
	ScheduleName string
}

// CannotFindScheduleReply reports a search that matched nothing.
type CannotFindScheduleReply struct {
	Query string
}

// SearchResultsReply offers the closest matches to pick from.
type SearchResultsReply struct {
	Results []models.SearchResult
}

// WeekReply carries one schedule week.
type WeekReply struct {
	ScheduleName string
	Week         models.Week
}

// DayReply carries a single day, possibly an empty synthetic one when
// the requested date has no classes.
type DayReply struct {
	ScheduleName string
	Day          models.Day
}

// UpcomingReply carries the nearest classes summary.
type UpcomingReply struct {
	Events UpcomingEvents
}

// HelpReply lists what the bot understands.
type HelpReply struct{}

// UnknownCommandReply answers text the bot could not interpret.
type UnknownCommandReply struct{}

// InternalErrorReply substitutes any failed reply so the peer always
// hears something.
type InternalErrorReply struct{}

func (GreetingReply) isReply()           {}
func (ReadyToChangeReply) isReply()      {}
func (AlreadyStartedReply) isReply()     {}
func (ScheduleChosenReply) isReply()     {}
func (CannotFindScheduleReply) isReply() {}
func (SearchResultsReply) isReply()      {}
func (WeekReply) isReply()               {}
func (DayReply) isReply()                {}
func (UpcomingReply) isReply()           {}
func (HelpReply) isReply()               {}
func (UnknownCommandReply) isReply()     {}
func (InternalErrorReply) isReply()      {}

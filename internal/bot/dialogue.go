// Package bot holds the messenger dialogue: classifying what a peer
// wrote, driving the selection state machine and rendering replies.
// Platform transports stay outside; they hand in raw text and send back
// whatever the dialogue renders.
package bot

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/calendar"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

// scheduleProvider is the slice of the schedule service the dialogue needs.
type scheduleProvider interface {
	GetSchedule(ctx context.Context, rawName string, typ models.ScheduleType, offset int) (models.Schedule, error)
}

// scheduleFinder searches schedules for the selection flow.
type scheduleFinder interface {
	Search(ctx context.Context, rawQuery string, typ *models.ScheduleType) ([]models.SearchResult, error)
}

// peerStore persists conversation state.
type peerStore interface {
	GetOrCreate(ctx context.Context, platform models.Platform, chatID int64) (models.Peer, bool, error)
	Update(ctx context.Context, peer *models.Peer) error
}

// Dialogue answers one utterance at a time. It never returns an error:
// anything that fails collapses to InternalErrorReply so the peer always
// receives a message.
type Dialogue struct {
	schedules scheduleProvider
	search    scheduleFinder
	peers     peerStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewDialogue wires the dialogue over the schedule and search services.
func NewDialogue(schedules scheduleProvider, search scheduleFinder, peers peerStore, logger *zap.Logger) *Dialogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialogue{
		schedules: schedules,
		search:    search,
		peers:     peers,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleMessage processes a single incoming message and returns the reply
// to send back.
func (d *Dialogue) HandleMessage(ctx context.Context, platform models.Platform, chatID int64, text string) Reply {
	reply, err := d.handle(ctx, platform, chatID, text)
	if err != nil {
		d.logger.Error("dialogue failed",
			zap.String("platform", string(platform)),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return InternalErrorReply{}
	}
	return reply
}

func (d *Dialogue) handle(ctx context.Context, platform models.Platform, chatID int64, text string) (Reply, error) {
	now := d.now().In(calendar.Moscow())
	today := models.DateOf(now)
	action := Classify(text, today)

	peer, created, err := d.peers.GetOrCreate(ctx, platform, chatID)
	if err != nil {
		return nil, err
	}

	// A peer who has never chosen a schedule is walked through selection
	// before any command works.
	if !peer.HasSchedule() && action.Kind != ActionUnknown {
		if err := d.beginSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		if created {
			return GreetingReply{}, nil
		}
		return ReadyToChangeReply{}, nil
	}

	switch action.Kind {
	case ActionStart:
		if err := d.clearSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		return AlreadyStartedReply{ScheduleName: peer.SelectedSchedule}, nil

	case ActionHelp:
		if err := d.clearSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		return HelpReply{}, nil

	case ActionChangeSchedule:
		if err := d.beginSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		return ReadyToChangeReply{}, nil

	case ActionWeek:
		if err := d.clearSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		schedule, err := d.schedules.GetSchedule(ctx, peer.SelectedSchedule, peer.SelectedScheduleType, action.Offset)
		if err != nil {
			return nil, err
		}
		return WeekReply{ScheduleName: schedule.Name, Week: schedule.Weeks[0]}, nil

	case ActionDay:
		if err := d.clearSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		return d.dayReply(ctx, &peer, today, action.Offset)

	case ActionUpcoming:
		if err := d.clearSelecting(ctx, &peer); err != nil {
			return nil, err
		}
		return d.upcomingReply(ctx, &peer, now)

	default:
		if peer.SelectingSchedule || !peer.HasSchedule() {
			return d.chooseSchedule(ctx, &peer, action.Query)
		}
		return UnknownCommandReply{}, nil
	}
}

// dayReply picks the requested date out of the week that contains it,
// fabricating an empty day when nothing is scheduled.
func (d *Dialogue) dayReply(ctx context.Context, peer *models.Peer, today models.Date, dayOffset int) (Reply, error) {
	target := today.AddDays(dayOffset)
	weekOffset := today.MondayOf().DaysUntil(target.MondayOf()) / 7

	schedule, err := d.schedules.GetSchedule(ctx, peer.SelectedSchedule, peer.SelectedScheduleType, weekOffset)
	if err != nil {
		return nil, err
	}

	for _, day := range schedule.Weeks[0].Days {
		if day.Date.Equal(target) {
			return DayReply{ScheduleName: schedule.Name, Day: day}, nil
		}
	}
	return DayReply{
		ScheduleName: schedule.Name,
		Day: models.Day{
			DayOfWeek: uint8(target.Weekday1to7()),
			Date:      target,
		},
	}, nil
}

// upcomingReply scans the current and the next week for the nearest
// classes.
func (d *Dialogue) upcomingReply(ctx context.Context, peer *models.Peer, now time.Time) (Reply, error) {
	var weeks []models.Week
	for _, offset := range []int{0, 1} {
		schedule, err := d.schedules.GetSchedule(ctx, peer.SelectedSchedule, peer.SelectedScheduleType, offset)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, schedule.Weeks...)
	}
	return UpcomingReply{Events: buildUpcoming(now, weeks)}, nil
}

// chooseSchedule runs the selection flow on free text: an exact match
// saves the choice, close matches become buttons, nothing found gets a
// retry prompt.
func (d *Dialogue) chooseSchedule(ctx context.Context, peer *models.Peer, query string) (Reply, error) {
	results, err := d.search.Search(ctx, query, nil)
	if err != nil {
		// A malformed query (too short, too long) is the peer's typo,
		// not a failure worth an error reply.
		if appErrors.IsUser(err) {
			return CannotFindScheduleReply{Query: query}, nil
		}
		return nil, err
	}

	for _, r := range results {
		if models.FuzzyEqual(r.Name, query) {
			peer.SelectedSchedule = r.Name
			peer.SelectedScheduleType = r.Type
			peer.SelectingSchedule = false
			if err := d.peers.Update(ctx, peer); err != nil {
				return nil, err
			}
			return ScheduleChosenReply{ScheduleName: r.Name}, nil
		}
	}

	if len(results) == 0 {
		return CannotFindScheduleReply{Query: query}, nil
	}

	// Person names are long; show fewer of them.
	limit := 6
	if lo.SomeBy(results, func(r models.SearchResult) bool { return r.Type == models.ScheduleTypePerson }) {
		limit = 3
	}
	return SearchResultsReply{Results: lo.Slice(results, 0, limit)}, nil
}

func (d *Dialogue) beginSelecting(ctx context.Context, peer *models.Peer) error {
	peer.SelectingSchedule = true
	return d.peers.Update(ctx, peer)
}

// clearSelecting drops a pending schedule change after an unrelated
// command.
func (d *Dialogue) clearSelecting(ctx context.Context, peer *models.Peer) error {
	if !peer.SelectingSchedule {
		return nil
	}
	peer.SelectingSchedule = false
	return d.peers.Update(ctx, peer)
}

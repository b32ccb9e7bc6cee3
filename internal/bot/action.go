package bot

import (
	"regexp"
	"strings"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// ActionKind names the intent classified out of an utterance.
type ActionKind string

const (
	ActionStart          ActionKind = "start"
	ActionHelp           ActionKind = "help"
	ActionChangeSchedule ActionKind = "change_schedule"
	ActionUpcoming       ActionKind = "upcoming"
	ActionWeek           ActionKind = "week"
	ActionDay            ActionKind = "day"
	ActionUnknown        ActionKind = "unknown"
)

// Action is the classified intent of a single utterance. Offset is a week
// offset for ActionWeek and a day offset for ActionDay; Query carries the
// cleaned-up text for ActionUnknown.
type Action struct {
	Kind   ActionKind
	Offset int
	Query  string
}

var (
	// Messenger mentions: VK wraps them in brackets ("[club1|@mpeix]"),
	// Telegram prefixes handles with @.
	mentionRe    = regexp.MustCompile(`\[[^\]]*\]|@\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	dayOfWeekRe   = regexp.MustCompile(`^(?:пары )?(?:во? )?(понедельник|вторник|сред[ау]|четверг|пятниц[ау]|суббот[ау])$`)
	relativeDayRe = regexp.MustCompile(`^(?:пары )?(?:на )?(сегодня|завтра|послезавтра|вчера|позавчера|today|tomorrow|yesterday)$`)
)

// exactActions maps normalized utterances to their intent.
var exactActions = map[string]Action{
	"start":  {Kind: ActionStart},
	"/start": {Kind: ActionStart},
	"начать": {Kind: ActionStart},
	"старт":  {Kind: ActionStart},

	"help":    {Kind: ActionHelp},
	"/help":   {Kind: ActionHelp},
	"помощь":  {Kind: ActionHelp},
	"справка": {Kind: ActionHelp},
	"команды": {Kind: ActionHelp},

	"сменить расписание":  {Kind: ActionChangeSchedule},
	"изменить расписание": {Kind: ActionChangeSchedule},
	"сменить группу":      {Kind: ActionChangeSchedule},
	"изменить группу":     {Kind: ActionChangeSchedule},
	"change schedule":     {Kind: ActionChangeSchedule},

	"ближайшие пары":    {Kind: ActionUpcoming},
	"ближайшие занятия": {Kind: ActionUpcoming},
	"ближайшие":         {Kind: ActionUpcoming},
	"что дальше":        {Kind: ActionUpcoming},

	"расписание":               {Kind: ActionWeek},
	"пары":                     {Kind: ActionWeek},
	"неделя":                   {Kind: ActionWeek},
	"эта неделя":               {Kind: ActionWeek},
	"текущая неделя":           {Kind: ActionWeek},
	"расписание на эту неделю": {Kind: ActionWeek},

	"следующая неделя":               {Kind: ActionWeek, Offset: 1},
	"след неделя":                    {Kind: ActionWeek, Offset: 1},
	"расписание на следующую неделю": {Kind: ActionWeek, Offset: 1},

	"прошлая неделя":               {Kind: ActionWeek, Offset: -1},
	"расписание на прошлую неделю": {Kind: ActionWeek, Offset: -1},
}

var weekdayByName = map[string]int{
	"понедельник": 1,
	"вторник":     2,
	"среда":       3,
	"среду":       3,
	"четверг":     4,
	"пятница":     5,
	"пятницу":     5,
	"суббота":     6,
	"субботу":     6,
}

var relativeDayOffsets = map[string]int{
	"позавчера":   -2,
	"вчера":       -1,
	"yesterday":   -1,
	"сегодня":     0,
	"today":       0,
	"завтра":      1,
	"tomorrow":    1,
	"послезавтра": 2,
}

// Classify turns free text into an Action. Today's date anchors
// day-of-week requests: asking for a weekday always means the next such
// day, today included.
func Classify(raw string, today models.Date) Action {
	text := normalize(raw)
	if action, ok := exactActions[text]; ok {
		return action
	}
	if m := dayOfWeekRe.FindStringSubmatch(text); m != nil {
		offset := (weekdayByName[m[1]] - today.Weekday1to7() + 7) % 7
		return Action{Kind: ActionDay, Offset: offset}
	}
	if m := relativeDayRe.FindStringSubmatch(text); m != nil {
		return Action{Kind: ActionDay, Offset: relativeDayOffsets[m[1]]}
	}
	return Action{Kind: ActionUnknown, Query: text}
}

// normalize strips messenger mentions, trims, lowercases and collapses
// inner whitespace. It is idempotent, so classification does not depend
// on how many times the text went through it.
func normalize(raw string) string {
	s := mentionRe.ReplaceAllString(raw, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

// Button is one keyboard button. Platform clients translate rows of
// buttons into their native keyboard payloads.
type Button struct {
	Label string
}

// Rendered is a ready-to-send message.
type Rendered struct {
	Text     string
	Keyboard [][]Button
}

var weekdayNames = [8]string{
	"", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}

// weekdayAccusative carries the preposition along, "во вторник" being
// the lone irregular form.
var weekdayAccusative = [8]string{
	"", "в понедельник", "во вторник", "в среду", "в четверг", "в пятницу", "в субботу", "в воскресенье",
}

var monthGenitive = [13]string{
	"", "января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Render turns a reply into localized text and a keyboard for the given
// platform. It is pure: no I/O, no state.
func Render(reply Reply, platform models.Platform) Rendered {
	switch r := reply.(type) {
	case GreetingReply:
		text := "Привет! Я помогу узнать расписание занятий.\n" +
			"Напиши название группы или фамилию преподавателя — например, «А-01-22» или «Иванов Иван Иванович»."
		if platform == models.PlatformTelegram {
			text += "\n\nКоманда /help покажет подсказку."
		}
		return Rendered{Text: text}

	case ReadyToChangeReply:
		return Rendered{Text: "Хорошо! Напиши название группы или фамилию преподавателя."}

	case AlreadyStartedReply:
		return Rendered{
			Text: fmt.Sprintf("Мы уже знакомы 🙂 Твоё расписание — «%s». Напиши «помощь», если забыл, что я умею.",
				r.ScheduleName),
			Keyboard: defaultKeyboard(),
		}

	case ScheduleChosenReply:
		return Rendered{
			Text:     fmt.Sprintf("Запомнил! Теперь показываю расписание «%s».", r.ScheduleName),
			Keyboard: defaultKeyboard(),
		}

	case CannotFindScheduleReply:
		return Rendered{
			Text: fmt.Sprintf("Ничего не нашёл по запросу «%s». Проверь название и попробуй ещё раз.", r.Query),
		}

	case SearchResultsReply:
		return renderSearchResults(r)

	case WeekReply:
		return Rendered{Text: renderWeek(r), Keyboard: defaultKeyboard()}

	case DayReply:
		var b strings.Builder
		writeDay(&b, r.Day)
		return Rendered{Text: strings.TrimRight(b.String(), "\n"), Keyboard: defaultKeyboard()}

	case UpcomingReply:
		return Rendered{Text: renderUpcoming(r.Events), Keyboard: defaultKeyboard()}

	case HelpReply:
		return Rendered{Text: helpText(platform), Keyboard: defaultKeyboard()}

	case UnknownCommandReply:
		return Rendered{
			Text:     "Не понял тебя 🤔 Напиши «помощь», чтобы узнать, что я умею.",
			Keyboard: defaultKeyboard(),
		}

	default:
		return Rendered{
			Text:     "Что-то пошло не так. Попробуй ещё раз чуть позже.",
			Keyboard: defaultKeyboard(),
		}
	}
}

// defaultKeyboard offers the commands the classifier understands, so a
// tap round-trips back into an action.
func defaultKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Расписание"}, {Label: "Ближайшие пары"}},
		{{Label: "Сменить расписание"}, {Label: "Помощь"}},
	}
}

func helpText(platform models.Platform) string {
	text := "Я понимаю такие команды:\n" +
		"• «Расписание» — пары на эту неделю\n" +
		"• «Следующая неделя», «Прошлая неделя»\n" +
		"• «Пары в понедельник», «Завтра», «Сегодня»\n" +
		"• «Ближайшие пары» — что идёт сейчас и что дальше\n" +
		"• «Сменить расписание» — выбрать другую группу или преподавателя"
	if platform == models.PlatformTelegram {
		text += "\n\nКоманды /start и /help тоже работают."
	}
	return text
}

func renderSearchResults(r SearchResultsReply) Rendered {
	var b strings.Builder
	b.WriteString("Вот что удалось найти. Выбери подходящее:\n")
	keyboard := make([][]Button, 0, len(r.Results))
	for _, result := range r.Results {
		line := result.Name
		if result.Description != "" {
			line += " — " + result.Description
		}
		fmt.Fprintf(&b, "• %s\n", line)
		keyboard = append(keyboard, []Button{{Label: result.Name}})
	}
	return Rendered{Text: strings.TrimRight(b.String(), "\n"), Keyboard: keyboard}
}

func renderWeek(r WeekReply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Расписание «%s», неделя с %s\n", r.ScheduleName, formatDate(r.Week.FirstDayOfWeek))
	if r.Week.WeekOfSemester > 0 {
		fmt.Fprintf(&b, "%d-я учебная неделя\n", r.Week.WeekOfSemester)
	} else {
		b.WriteString("Неучебная неделя\n")
	}
	if len(r.Week.Days) == 0 {
		b.WriteString("\nЗанятий нет.")
		return b.String()
	}
	for _, day := range r.Week.Days {
		b.WriteByte('\n')
		writeDay(&b, day)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderUpcoming(events UpcomingEvents) string {
	var b strings.Builder
	switch e := events.(type) {
	case ClassesToday:
		if len(e.InProgress) > 0 {
			b.WriteString("Сейчас идёт:\n")
			writeClasses(&b, e.InProgress)
			if len(e.Future) > 0 {
				b.WriteString("\nДальше сегодня:\n")
				writeClasses(&b, e.Future)
			}
		} else {
			fmt.Fprintf(&b, "Сегодня занятия начнутся через %s.\n", humanDuration(e.WaitFor))
			writeClasses(&b, e.Future)
		}

	case ClassesOnAnotherDay:
		fmt.Fprintf(&b, "Ближайшие занятия %s, %s — через %s.\n",
			weekdayAccusative[e.Day.DayOfWeek], formatDate(e.Day.Date), humanDuration(e.WaitFor))
		writeClasses(&b, e.Day.Classes)

	default:
		b.WriteString("В ближайшие две недели занятий не видно. Отдыхай!")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeDay(b *strings.Builder, day models.Day) {
	fmt.Fprintf(b, "📅 %s, %s\n", weekdayNames[day.DayOfWeek], formatDate(day.Date))
	if len(day.Classes) == 0 {
		b.WriteString("Занятий нет.\n")
		return
	}
	writeClasses(b, day.Classes)
}

func writeClasses(b *strings.Builder, classes []models.Classes) {
	for _, c := range classes {
		marker := "•"
		if c.Number > 0 {
			marker = fmt.Sprintf("%d)", c.Number)
		}
		fmt.Fprintf(b, "%s %s–%s %s", marker, clockShort(c.Time.Start), clockShort(c.Time.End), c.Name)
		if c.RawType != "" {
			fmt.Fprintf(b, " [%s]", c.RawType)
		}
		b.WriteByte('\n')
		if details := lo.Compact([]string{c.Place, c.Person}); len(details) > 0 {
			fmt.Fprintf(b, "   %s\n", strings.Join(details, " · "))
		}
	}
}

func formatDate(d models.Date) string {
	return fmt.Sprintf("%d %s", d.Day(), monthGenitive[d.Month()])
}

func clockShort(c models.ClockTime) string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// humanDuration renders a duration the way you would say it: the two
// largest non-zero units, minutes at minimum.
func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return "пару минут"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%d дн. %d ч", days, hours)
	case days > 0:
		return fmt.Sprintf("%d дн.", days)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d ч %d мин", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d ч", hours)
	default:
		return fmt.Sprintf("%d мин", minutes)
	}
}

package calendar

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

const shiftPath = "/etc/mpeix/schedule_shift.toml"

func newTestEngine(t *testing.T, shiftConfig string) (*Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if shiftConfig != "" {
		require.NoError(t, afero.WriteFile(fs, shiftPath, []byte(shiftConfig), 0o644))
	}
	return NewEngineWithFs(fs, shiftPath, nil), fs
}

func date(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}

func TestWeekOfSemesterDefaults(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	tests := []struct {
		name      string
		weekStart models.Date
		want      int8
	}{
		// September 1, 2023 is a Friday; the week containing it is week 1
		// even though classes only run for two days of it.
		{"fall first full week", date(2023, time.September, 4), 2},
		{"fall week containing sep 1 is august", date(2023, time.August, 28), NonStudyingWeek},
		{"fall midterm", date(2023, time.October, 16), 8},
		// September 1, 2024 is a Sunday; the semester opens September 2.
		{"fall sunday opening", date(2024, time.September, 2), 1},
		{"spring first week", date(2024, time.February, 5), 1},
		{"spring winter session", date(2024, time.January, 29), NonStudyingWeek},
		{"spring last week", date(2024, time.June, 3), 18},
		{"spring summer session", date(2024, time.June, 10), NonStudyingWeek},
		{"july", date(2024, time.July, 1), NonStudyingWeek},
		{"august", date(2024, time.August, 5), NonStudyingWeek},
		{"fall monday opening", date(2025, time.September, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.WeekOfSemester(tt.weekStart))
		})
	}
}

func TestWeekOfSemesterOverride(t *testing.T) {
	engine, _ := newTestEngine(t, `
[2024]
spring = { first-day = "2024-02-12" }
`)

	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 12)))
	assert.Equal(t, NonStudyingWeek, engine.WeekOfSemester(date(2024, time.February, 5)),
		"the default opening week is shifted out of the semester")
	// Other years keep the defaults.
	assert.Equal(t, int8(2), engine.WeekOfSemester(date(2023, time.September, 4)))
}

func TestWeekOfSemesterOverrideWithWeekNumber(t *testing.T) {
	engine, _ := newTestEngine(t, `
[2024]
spring = { first-day = "2024-02-12", week-number = 2 }
`)

	assert.Equal(t, int8(2), engine.WeekOfSemester(date(2024, time.February, 12)))
	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 5)))
}

func TestShiftConfigYearMismatchFallsBackToDefaults(t *testing.T) {
	engine, _ := newTestEngine(t, `
[2024]
fall = { first-day = "2025-01-13" }
`)

	// The file is rejected as a whole, so defaults apply.
	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.September, 2)))
}

func TestShiftConfigUnparseableFallsBackToDefaults(t *testing.T) {
	engine, _ := newTestEngine(t, `this is not toml {{{`)

	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 5)))
}

func TestShiftConfigIsCachedBetweenReads(t *testing.T) {
	engine, fs := newTestEngine(t, `
[2024]
spring = { first-day = "2024-02-12" }
`)

	require.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 12)))

	// Rewriting the file has no effect until the cache TTL lapses.
	require.NoError(t, afero.WriteFile(fs, shiftPath, []byte(`
[2024]
spring = { first-day = "2024-02-05" }
`), 0o644))

	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 12)))

	engine.rulesCache.Flush()
	assert.Equal(t, int8(2), engine.WeekOfSemester(date(2024, time.February, 12)))
	assert.Equal(t, int8(1), engine.WeekOfSemester(date(2024, time.February, 5)))
}

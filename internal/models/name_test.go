package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

func TestNewScheduleNameGroupNormalization(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"А-01-22", "А-01-22"},
		{"а-01-22", "А-01-22"},
		{"С-1-16", "С-01-16"},
		{"s-1-16", "S-01-16"},
		{"А-12-16", "А-12-16"},
		{"Эл-41-21", "ЭЛ-41-21"},
	}
	for _, tc := range cases {
		name, err := NewScheduleName(tc.raw, ScheduleTypeGroup)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, name.String(), tc.raw)
	}
}

func TestNewScheduleNameGroupInsertsSingleZero(t *testing.T) {
	name, err := NewScheduleName("С-1-16", ScheduleTypeGroup)
	require.NoError(t, err)
	assert.Equal(t, "С-01-16", name.String())

	// Normalization is idempotent: the long form no longer matches the
	// short-form pattern.
	again, err := NewScheduleName(name.String(), ScheduleTypeGroup)
	require.NoError(t, err)
	assert.Equal(t, name.String(), again.String())
}

func TestNewScheduleNameGroupRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "АБ", "группа с пробелами", "too_long_name_with_underscores", "x"} {
		_, err := NewScheduleName(raw, ScheduleTypeGroup)
		require.Error(t, err, raw)
		assert.True(t, appErrors.IsUser(err), raw)
	}
}

func TestNewScheduleNamePerson(t *testing.T) {
	for _, raw := range []string{"Иванов", "Иванов Иван", "Иванов Иван Иванович", "Петрова-Водкина Мария", "Фёдоров Пётр"} {
		name, err := NewScheduleName(raw, ScheduleTypePerson)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, name.String())
	}
	for _, raw := range []string{"", "Ivanov", "Иванов  Иван", "Иванов Иван Иванович Иванов Иван Иванович"} {
		_, err := NewScheduleName(raw, ScheduleTypePerson)
		require.Error(t, err, raw)
	}
}

func TestNewScheduleNameRoomReserved(t *testing.T) {
	_, err := NewScheduleName("А-214", ScheduleTypeRoom)
	require.Error(t, err)
	assert.True(t, appErrors.IsUser(err))
}

func TestFuzzyEqual(t *testing.T) {
	assert.True(t, FuzzyEqual("Иванов  Иван", "иванов иван"))
	assert.True(t, FuzzyEqual(" А-01-22 ", "а-01-22"))
	assert.False(t, FuzzyEqual("Иванов", "Петров"))
}

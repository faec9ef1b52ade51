package handlers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/Freeeeeet/ybooking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, []string{"42"}, commandArgs("/book 42"))
	assert.Equal(t, []string{"42"}, commandArgs("/book@ybooking_bot   42 "))
	assert.Empty(t, commandArgs("/myslots"))
	assert.Nil(t, commandArgs(""))
}

func TestParseID(t *testing.T) {
	id, err := parseID([]string{"17"})
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, args := range [][]string{nil, {"1", "2"}, {"abc"}, {"0"}, {"-3"}} {
		_, err := parseID(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestParseScheduleArgs(t *testing.T) {
	days, minutes, err := parseScheduleArgs([]string{"14", "30"})
	require.NoError(t, err)
	assert.Equal(t, 14, days)
	assert.Equal(t, 30, minutes)

	_, _, err = parseScheduleArgs([]string{"14"})
	assert.ErrorIs(t, err, errUsage)

	_, _, err = parseScheduleArgs([]string{"x", "30"})
	assert.Error(t, err)
}

func TestParseIntervalArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    model.DayInterval
		wantErr bool
	}{
		{[]string{"mon", "09:00", "12:30"}, model.DayInterval{Weekday: model.Monday, Start: 9 * time.Hour, Stop: 12*time.Hour + 30*time.Minute}, false},
		{[]string{"6", "20:00", "24:00"}, model.DayInterval{Weekday: model.Sunday, Start: 20 * time.Hour, Stop: 24 * time.Hour}, false},
		{[]string{"FUN", "09:00", "10:00"}, model.DayInterval{}, true},
		{[]string{"MON", "9am", "10:00"}, model.DayInterval{}, true},
		{[]string{"MON", "09:00"}, model.DayInterval{}, true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := parseIntervalArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVacationArgs(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)

	v, err := parseVacationArgs([]string{"2024-05-01", "2024-05-10"}, loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", model.DateKey(v.StartDate))
	assert.Equal(t, "2024-05-10", model.DateKey(v.StopDate))

	single, err := parseVacationArgs([]string{"2024-05-01"}, loc)
	require.NoError(t, err)
	assert.Equal(t, single.StartDate, single.StopDate)

	_, err = parseVacationArgs([]string{"01.05.2024"}, loc)
	assert.Error(t, err)

	_, err = parseVacationArgs(nil, loc)
	assert.ErrorIs(t, err, errUsage)
}

func TestMessageFor(t *testing.T) {
	booked := messageFor(model.ErrAlreadyBooked)
	notFound := messageFor(fmt.Errorf("claim: %w", model.ErrNotFound))

	assert.NotEqual(t, booked, notFound)
	assert.Contains(t, booked, "занят")
	assert.Contains(t, notFound, "Не найдено")
	assert.Contains(t, messageFor(model.ErrForbidden), "прав")
	assert.Contains(t, messageFor(model.ErrInvalidArgument.WithMessage("weekday must be between 0 and 6")), "weekday must be between 0 and 6")
	assert.Equal(t, internalErrorText, messageFor(errors.New("connection refused")))
}

func TestPluralizeSlots(t *testing.T) {
	cases := map[int]string{1: "слот", 2: "слота", 5: "слотов", 11: "слотов", 21: "слот", 22: "слота", 112: "слотов"}
	for n, want := range cases {
		assert.Equal(t, want, PluralizeSlots(n), "n=%d", n)
	}
}

func TestFormatSlots(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	slots := []*model.Timetable{{ID: 7, Start: start, Stop: start.Add(30 * time.Minute)}}

	out := FormatSlots("Слоты", slots, loc)
	assert.Contains(t, out, "1 слот")
	assert.Contains(t, out, "#7  Пн 01.01.2024 09:00-09:30")

	assert.Contains(t, FormatSlots("Слоты", nil, loc), "Слотов нет")
}

func TestFormatOverview(t *testing.T) {
	out := FormatOverview(&service.Overview{
		Schedule:  &model.Schedule{PlanningDays: 14, SessionDuration: 30},
		Intervals: []model.DayInterval{{ID: 3, Weekday: model.Friday, Start: 9 * time.Hour, Stop: 13 * time.Hour}},
	})

	assert.Contains(t, out, "Горизонт: 14 дн., приём: 30 мин")
	assert.Contains(t, out, "#3 Пт 09:00-13:00")
	assert.Contains(t, FormatOverview(&service.Overview{}), "Параметры не заданы")
}

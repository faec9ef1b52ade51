package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
)

var errUsage = errors.New("wrong number of arguments")

// commandArgs отбрасывает саму команду (вместе с @botname) и возвращает аргументы
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// parseScheduleArgs разбирает "<дней> <минут>"
func parseScheduleArgs(args []string) (planningDays, sessionDuration int, err error) {
	if len(args) != 2 {
		return 0, 0, errUsage
	}
	if planningDays, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid planning days %q", args[0])
	}
	if sessionDuration, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid session duration %q", args[1])
	}
	return planningDays, sessionDuration, nil
}

// parseIntervalArgs разбирает "<день недели> <HH:MM> <HH:MM>"
func parseIntervalArgs(args []string) (model.DayInterval, error) {
	if len(args) != 3 {
		return model.DayInterval{}, errUsage
	}

	weekday, err := model.ParseWeekday(strings.ToUpper(args[0]))
	if err != nil {
		return model.DayInterval{}, err
	}
	start, err := model.ParseClock(args[1])
	if err != nil {
		return model.DayInterval{}, err
	}
	stop, err := model.ParseClock(args[2])
	if err != nil {
		return model.DayInterval{}, err
	}

	return model.DayInterval{Weekday: weekday, Start: start, Stop: stop}, nil
}

// parseVacationArgs разбирает "<YYYY-MM-DD> [YYYY-MM-DD]", один день если вторая дата не указана
func parseVacationArgs(args []string, loc *time.Location) (model.Vacation, error) {
	if len(args) < 1 || len(args) > 2 {
		return model.Vacation{}, errUsage
	}

	start, err := time.ParseInLocation(time.DateOnly, args[0], loc)
	if err != nil {
		return model.Vacation{}, fmt.Errorf("invalid date %q", args[0])
	}

	stop := start
	if len(args) == 2 {
		if stop, err = time.ParseInLocation(time.DateOnly, args[1], loc); err != nil {
			return model.Vacation{}, fmt.Errorf("invalid date %q", args[1])
		}
	}

	return model.Vacation{StartDate: start, StopDate: stop}, nil
}

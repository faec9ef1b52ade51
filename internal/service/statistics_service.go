package service

import (
	"context"

	"github.com/Freeeeeet/ybooking/internal/model"
)

// StatisticsService количество слотов по дням
type StatisticsService struct {
	timetable TimetableStore
	timezone  string
}

func NewStatisticsService(timetable TimetableStore, timezone string) *StatisticsService {
	return &StatisticsService{timetable: timetable, timezone: timezone}
}

func (s *StatisticsService) Daily(ctx context.Context) ([]model.DayStat, error) {
	return s.timetable.DailyStatistics(ctx, s.timezone)
}

package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"go.uber.org/zap"
)

// Overview расписание врача целиком
type Overview struct {
	Schedule  *model.Schedule
	Intervals []model.DayInterval
	Vacations []model.Vacation
}

// AvailabilityService управление расписанием врача: параметры, окна приёма, отпуска.
// Менять расписание может сам врач или администратор.
type AvailabilityService struct {
	persons      PersonStore
	availability AvailabilityStore
	logger       *zap.Logger
}

func NewAvailabilityService(persons PersonStore, availability AvailabilityStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		persons:      persons,
		availability: availability,
		logger:       logger,
	}
}

// SetSchedule задаёт горизонт планирования и длительность приёма
func (s *AvailabilityService) SetSchedule(ctx context.Context, requester model.Requester, doctorID int64, planningDays, sessionDuration int) (*model.Schedule, error) {
	if _, err := s.authorize(ctx, requester, doctorID); err != nil {
		return nil, err
	}

	schedule := &model.Schedule{
		DoctorID:        doctorID,
		PlanningDays:    planningDays,
		SessionDuration: sessionDuration,
	}
	if !schedule.Valid() {
		return nil, model.ErrInvalidSchedule.WithMessage("planning days and session duration must be positive")
	}

	if err := s.availability.UpsertSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.Info("Schedule updated",
		zap.Int64("doctor_id", doctorID),
		zap.Int("planning_days", planningDays),
		zap.Int("session_duration", sessionDuration),
	)

	return schedule, nil
}

// AddInterval добавляет регулярное окно приёма
func (s *AvailabilityService) AddInterval(ctx context.Context, requester model.Requester, interval *model.DayInterval) error {
	if _, err := s.authorize(ctx, requester, interval.DoctorID); err != nil {
		return err
	}

	switch {
	case !interval.Weekday.Valid():
		return model.ErrInvalidArgument.WithMessage("weekday must be between 0 and 6")
	case interval.Start < 0 || interval.Stop > 24*time.Hour:
		return model.ErrInvalidArgument.WithMessage("interval must fit into one day")
	case interval.Start >= interval.Stop:
		return model.ErrInvalidArgument.WithMessage("interval start must be before stop")
	}

	existing, err := s.availability.ListIntervals(ctx, interval.DoctorID, []model.Weekday{interval.Weekday})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Weekday == interval.Weekday && other.Overlaps(*interval) {
			return model.ErrInvalidArgument.WithMessage("interval overlaps %s %s-%s",
				other.Weekday, model.FormatClock(other.Start), model.FormatClock(other.Stop))
		}
	}

	if err := s.availability.AddInterval(ctx, interval); err != nil {
		return err
	}

	s.logger.Info("Interval added",
		zap.Int64("doctor_id", interval.DoctorID),
		zap.Int64("interval_id", interval.ID),
		zap.Stringer("weekday", interval.Weekday),
	)

	return nil
}

// RemoveInterval удаляет окно приёма. Уже созданные слоты остаются.
func (s *AvailabilityService) RemoveInterval(ctx context.Context, requester model.Requester, doctorID, intervalID int64) error {
	if _, err := s.authorize(ctx, requester, doctorID); err != nil {
		return err
	}
	return s.availability.DeleteInterval(ctx, doctorID, intervalID)
}

// AddVacation добавляет отпуск, границы включительно
func (s *AvailabilityService) AddVacation(ctx context.Context, requester model.Requester, vacation *model.Vacation) error {
	if _, err := s.authorize(ctx, requester, vacation.DoctorID); err != nil {
		return err
	}

	if model.DateKey(vacation.StartDate) > model.DateKey(vacation.StopDate) {
		return model.ErrInvalidArgument.WithMessage("vacation start must not be after stop")
	}

	if err := s.availability.AddVacation(ctx, vacation); err != nil {
		return err
	}

	s.logger.Info("Vacation added",
		zap.Int64("doctor_id", vacation.DoctorID),
		zap.String("start", model.DateKey(vacation.StartDate)),
		zap.String("stop", model.DateKey(vacation.StopDate)),
	)

	return nil
}

// RemoveVacation удаляет отпуск
func (s *AvailabilityService) RemoveVacation(ctx context.Context, requester model.Requester, doctorID, vacationID int64) error {
	if _, err := s.authorize(ctx, requester, doctorID); err != nil {
		return err
	}
	return s.availability.DeleteVacation(ctx, doctorID, vacationID)
}

// Overview возвращает параметры, окна и будущие отпуска врача
func (s *AvailabilityService) Overview(ctx context.Context, requester model.Requester, doctorID int64, now time.Time) (*Overview, error) {
	if _, err := s.authorize(ctx, requester, doctorID); err != nil {
		return nil, err
	}

	schedule, err := s.availability.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	intervals, err := s.availability.ListIntervals(ctx, doctorID, nil)
	if err != nil {
		return nil, err
	}

	// отпуска на год вперёд
	vacations, err := s.availability.ListVacations(ctx, doctorID, now, now.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	return &Overview{Schedule: schedule, Intervals: intervals, Vacations: vacations}, nil
}

func (s *AvailabilityService) authorize(ctx context.Context, requester model.Requester, doctorID int64) (*model.Doctor, error) {
	if !requester.IsAdmin && requester.PersonID != doctorID {
		return nil, model.ErrForbidden.WithMessage("doctor can manage only own schedule")
	}

	person, err := s.persons.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	doctor, ok := person.(*model.Doctor)
	if !ok || !doctor.IsActive {
		return nil, model.ErrNotFound.WithMessage("doctor %d not found", doctorID)
	}

	return doctor, nil
}

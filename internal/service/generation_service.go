package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/ybooking/internal/generator"
	"github.com/Freeeeeet/ybooking/internal/lock"
	"github.com/Freeeeeet/ybooking/internal/metrics"
	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationReport итог одного цикла генерации
type GenerationReport struct {
	BatchID uuid.UUID
	Doctors int   // врачей с корректным расписанием
	Skipped int   // врачей, которых уже обрабатывает другой запуск
	Failed  int   // врачей с ошибкой
	Slots   int64 // созданных слотов
}

type GenerationService struct {
	availability AvailabilityStore
	timetable    TimetableStore
	locker       lock.Locker
	lockTTL      time.Duration
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewGenerationService(
	availability AvailabilityStore,
	timetable TimetableStore,
	locker lock.Locker,
	lockTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *GenerationService {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	return &GenerationService{
		availability: availability,
		timetable:    timetable,
		locker:       locker,
		lockTTL:      lockTTL,
		metrics:      m,
		logger:       logger,
	}
}

// GenerateTimeslots создаёт недостающие слоты для всех активных врачей.
// Ошибка по одному врачу логируется и не останавливает остальных.
func (s *GenerationService) GenerateTimeslots(ctx context.Context, now time.Time) (*GenerationReport, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveGenerationDuration(time.Since(started).Seconds())
	}()

	schedules, err := s.availability.ListGenerationTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generation targets: %w", err)
	}

	report := &GenerationReport{BatchID: uuid.New()}

	for _, schedule := range schedules {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !schedule.Valid() {
			s.logger.Warn("Skipping doctor with invalid schedule",
				zap.Int64("doctor_id", schedule.DoctorID),
				zap.Int("planning_days", schedule.PlanningDays),
				zap.Int("session_duration", schedule.SessionDuration),
			)
			s.metrics.ObserveGeneration("invalid")
			continue
		}

		report.Doctors++

		count, err := s.generateForDoctor(ctx, schedule, now, report.BatchID)
		switch {
		case errors.Is(err, lock.ErrNotAcquired):
			report.Skipped++
			s.metrics.ObserveGeneration("locked")
			s.logger.Info("Doctor is being generated by another run, skipping",
				zap.Int64("doctor_id", schedule.DoctorID),
			)
		case err != nil:
			report.Failed++
			s.metrics.ObserveGeneration("error")
			s.logger.Error("Failed to generate timeslots for doctor",
				zap.Int64("doctor_id", schedule.DoctorID),
				zap.Error(err),
			)
		default:
			report.Slots += count
			s.metrics.ObserveGeneration("ok")
			s.metrics.AddSlotsGenerated(count)
		}
	}

	s.logger.Info("Timeslot generation completed",
		zap.String("batch_id", report.BatchID.String()),
		zap.Int("doctors", report.Doctors),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("slots_created", report.Slots),
	)

	return report, nil
}

func (s *GenerationService) generateForDoctor(ctx context.Context, schedule model.Schedule, now time.Time, batchID uuid.UUID) (count int64, err error) {
	release, err := s.locker.Acquire(ctx, lock.DoctorKey(schedule.DoctorID), s.lockTTL)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.Warn("Failed to release generation lock",
				zap.Int64("doctor_id", schedule.DoctorID),
				zap.Error(rerr),
			)
		}
	}()

	from, to := generator.Window(schedule, now)

	processed, err := s.timetable.ProcessedDays(ctx, schedule.DoctorID, from, to, now.Location())
	if err != nil {
		return 0, err
	}

	vacations, err := s.availability.ListVacations(ctx, schedule.DoctorID, from, to.AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}

	availability := generator.Availability{
		DoctorID:      schedule.DoctorID,
		Schedule:      schedule,
		Vacations:     vacations,
		ProcessedDays: processed,
	}

	days := generator.Days(availability, now)
	if len(days) == 0 {
		s.logger.Debug("Nothing to generate for doctor", zap.Int64("doctor_id", schedule.DoctorID))
		return 0, nil
	}

	weekdays := make([]model.Weekday, 0, len(days))
	seen := make(map[model.Weekday]bool, len(days))
	for _, day := range days {
		w := model.WeekdayOf(day)
		if !seen[w] {
			seen[w] = true
			weekdays = append(weekdays, w)
		}
	}

	availability.Intervals, err = s.availability.ListIntervals(ctx, schedule.DoctorID, weekdays)
	if err != nil {
		return 0, err
	}

	slots := generator.Plan(availability, now)
	if len(slots) == 0 {
		return 0, nil
	}

	count, err = s.timetable.BulkCreate(ctx, slots, batchID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Timeslots generated for doctor",
		zap.Int64("doctor_id", schedule.DoctorID),
		zap.Int("days", len(days)),
		zap.Int64("slots", count),
	)

	return count, nil
}

package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/ybooking/internal/service"
	"go.uber.org/zap"
)

// Generator то, что планировщик запускает раз в сутки
type Generator interface {
	GenerateTimeslots(ctx context.Context, now time.Time) (*service.GenerationReport, error)
}

// Scheduler управляет фоновой генерацией слотов
type Scheduler struct {
	generator Generator
	location  *time.Location
	hour      int
	logger    *zap.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

// NewScheduler создаёт планировщик, который запускает генерацию
// при старте и затем каждый день в hour часов по location
func NewScheduler(generator Generator, location *time.Location, hour int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		generator: generator,
		location:  location,
		hour:      hour,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Int("hour", s.hour),
		zap.String("timezone", s.location.String()),
	)

	go s.runSlotGenerationTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт текущий запуск
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

func (s *Scheduler) runSlotGenerationTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.generateSlots(ctx)

	for {
		now := time.Now().In(s.location)
		timer := time.NewTimer(nextRun(now, s.hour).Sub(now))

		select {
		case <-timer.C:
			s.generateSlots(ctx)
		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Slot generation task stopped")
			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Slot generation task cancelled")
			return
		}
	}
}

// generateSlots ошибки только логируются, процесс продолжает работу
func (s *Scheduler) generateSlots(ctx context.Context) {
	s.logger.Info("Starting automatic slot generation")

	report, err := s.generator.GenerateTimeslots(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
		return
	}

	s.logger.Info("Automatic slot generation completed",
		zap.Int64("slots", report.Slots),
		zap.Int("failed", report.Failed),
	)
}

// nextRun ближайший момент строго после now, когда часы показывают hour:00
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}

package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/google/uuid"
)

// Интерфейсы хранилищ, которые реализуют репозитории из internal/repository

type PersonStore interface {
	Create(ctx context.Context, person model.Person) error
	GetByID(ctx context.Context, id int64) (model.Person, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (model.Person, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetDoctor(ctx context.Context, id int64, isDoctor bool) error
	ListActiveDoctors(ctx context.Context) ([]*model.Doctor, error)
}

type AvailabilityStore interface {
	UpsertSchedule(ctx context.Context, schedule *model.Schedule) error
	GetSchedule(ctx context.Context, doctorID int64) (*model.Schedule, error)
	ListGenerationTargets(ctx context.Context) ([]model.Schedule, error)
	AddInterval(ctx context.Context, interval *model.DayInterval) error
	DeleteInterval(ctx context.Context, doctorID, intervalID int64) error
	ListIntervals(ctx context.Context, doctorID int64, weekdays []model.Weekday) ([]model.DayInterval, error)
	AddVacation(ctx context.Context, vacation *model.Vacation) error
	DeleteVacation(ctx context.Context, doctorID, vacationID int64) error
	ListVacations(ctx context.Context, doctorID int64, from, to time.Time) ([]model.Vacation, error)
}

type TimetableStore interface {
	BulkCreate(ctx context.Context, slots []model.Timetable, batchID uuid.UUID) (int64, error)
	ProcessedDays(ctx context.Context, doctorID int64, from, to time.Time, loc *time.Location) (map[string]struct{}, error)
	ListFreeByDoctor(ctx context.Context, doctorID int64, now time.Time) ([]*model.Timetable, error)
	ListByPatient(ctx context.Context, patientID int64, now time.Time) ([]*model.Timetable, error)
	Claim(ctx context.Context, slotID, patientID int64, now time.Time) (*model.Timetable, error)
	Release(ctx context.Context, slotID, patientID int64, asAdmin bool, now time.Time) error
	DailyStatistics(ctx context.Context, tz string) ([]model.DayStat, error)
}

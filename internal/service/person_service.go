package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"go.uber.org/zap"
)

type PersonService struct {
	persons   PersonStore
	timetable TimetableStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewPersonService(persons PersonStore, timetable TimetableStore, logger *zap.Logger) *PersonService {
	return &PersonService{
		persons:   persons,
		timetable: timetable,
		logger:    logger,
		now:       time.Now,
	}
}

// Register регистрирует или обновляет человека по Telegram ID.
// Новые пользователи становятся пациентами.
func (s *PersonService) Register(ctx context.Context, telegramID int64, username, firstName, lastName string) (model.Person, error) {
	existing, err := s.persons.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing person: %w", err)
	}

	if existing != nil {
		p := existing.Base()
		p.Username = username
		p.FirstName = firstName
		p.LastName = lastName

		if err := s.persons.UpdateProfile(ctx, p); err != nil {
			return nil, fmt.Errorf("update person: %w", err)
		}

		s.logger.Info("Person updated",
			zap.Int64("person_id", p.ID),
			zap.Int64("telegram_id", telegramID),
		)

		return existing, nil
	}

	patient := &model.Patient{Profile: model.Profile{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Sex:        model.SexUndefined,
		IsActive:   true,
	}}

	if err := s.persons.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}

	s.logger.Info("New patient registered",
		zap.Int64("person_id", patient.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return patient, nil
}

// GetByTelegramID получает человека по Telegram ID
func (s *PersonService) GetByTelegramID(ctx context.Context, telegramID int64) (model.Person, error) {
	return s.persons.GetByTelegramID(ctx, telegramID)
}

// GetByID получает человека по ID
func (s *PersonService) GetByID(ctx context.Context, id int64) (model.Person, error) {
	return s.persons.GetByID(ctx, id)
}

// ListDoctors возвращает активных врачей
func (s *PersonService) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return s.persons.ListActiveDoctors(ctx)
}

// MakeDoctor делает человека врачом, только для администратора
func (s *PersonService) MakeDoctor(ctx context.Context, requester model.Requester, personID int64) error {
	if !requester.IsAdmin {
		return model.ErrForbidden
	}

	// Будущие записи пациента не должны остаться без владельца
	booked, err := s.timetable.ListByPatient(ctx, personID, s.now())
	if err != nil {
		return err
	}
	if len(booked) > 0 {
		return model.ErrInvalidArgument.WithMessage("person has %d upcoming bookings, cancel them first", len(booked))
	}

	if err := s.persons.SetDoctor(ctx, personID, true); err != nil {
		return err
	}

	s.logger.Info("Person became doctor", zap.Int64("person_id", personID))
	return nil
}

// Block деактивирует человека вместо удаления
func (s *PersonService) Block(ctx context.Context, requester model.Requester, personID int64) error {
	return s.setActive(ctx, requester, personID, false)
}

// Unblock возвращает заблокированного человека
func (s *PersonService) Unblock(ctx context.Context, requester model.Requester, personID int64) error {
	return s.setActive(ctx, requester, personID, true)
}

func (s *PersonService) setActive(ctx context.Context, requester model.Requester, personID int64, active bool) error {
	if !requester.IsAdmin {
		return model.ErrForbidden
	}

	if err := s.persons.SetActive(ctx, personID, active); err != nil {
		return err
	}

	s.logger.Info("Person activity changed",
		zap.Int64("person_id", personID),
		zap.Bool("active", active),
	)
	return nil
}

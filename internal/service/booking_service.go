package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/ybooking/internal/metrics"
	"github.com/Freeeeeet/ybooking/internal/model"
	"go.uber.org/zap"
)

type BookingService struct {
	persons   PersonStore
	timetable TimetableStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewBookingService(
	persons PersonStore,
	timetable TimetableStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		persons:   persons,
		timetable: timetable,
		metrics:   m,
		logger:    logger,
	}
}

// ListSlots возвращает будущие слоты человека.
// Для врача это его свободные слоты, для пациента - его записи.
// Чужие записи пациента видит только администратор.
func (s *BookingService) ListSlots(ctx context.Context, personID int64, requester model.Requester, now time.Time) ([]*model.Timetable, error) {
	person, err := s.activePerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	switch p := person.(type) {
	case *model.Doctor:
		return s.timetable.ListFreeByDoctor(ctx, p.ID, now)
	case *model.Patient:
		if requester.PersonID != p.ID && !requester.IsAdmin {
			return nil, model.ErrForbidden.WithMessage("patient can see only own schedule")
		}
		return s.timetable.ListByPatient(ctx, p.ID, now)
	default:
		return nil, model.ErrNotFound.WithMessage("person %d not found", personID)
	}
}

// ClaimSlot записывает пациента на свободный будущий слот
func (s *BookingService) ClaimSlot(ctx context.Context, slotID int64, requester model.Requester, now time.Time) (*model.Timetable, error) {
	patient, err := s.requesterPatient(ctx, requester)
	if err != nil {
		s.observe("claim", err)
		return nil, err
	}

	slot, err := s.timetable.Claim(ctx, slotID, patient.ID, now)
	s.observe("claim", err)
	if err != nil {
		s.logger.Info("Slot claim rejected",
			zap.Int64("slot_id", slotID),
			zap.Int64("patient_id", patient.ID),
			zap.String("reason", outcome(err)),
		)
		return nil, err
	}

	s.logger.Info("Slot booked",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("doctor_id", slot.DoctorID),
		zap.Int64("patient_id", patient.ID),
		zap.Time("start", slot.Start),
	)

	return slot, nil
}

// ReleaseSlot отменяет запись. Отменить может сам пациент или администратор.
func (s *BookingService) ReleaseSlot(ctx context.Context, slotID int64, requester model.Requester, now time.Time) error {
	var patientID int64

	if !requester.IsAdmin {
		patient, err := s.requesterPatient(ctx, requester)
		if err != nil {
			s.observe("release", err)
			return err
		}
		patientID = patient.ID
	}

	err := s.timetable.Release(ctx, slotID, patientID, requester.IsAdmin, now)
	s.observe("release", err)
	if err != nil {
		s.logger.Info("Slot release rejected",
			zap.Int64("slot_id", slotID),
			zap.Int64("requester_id", requester.PersonID),
			zap.String("reason", outcome(err)),
		)
		return err
	}

	s.logger.Info("Slot released",
		zap.Int64("slot_id", slotID),
		zap.Int64("requester_id", requester.PersonID),
		zap.Bool("admin", requester.IsAdmin),
	)

	return nil
}

// requesterPatient проверяет что запрос пришёл от активного пациента.
// Врачи и администраторы записываться не могут.
func (s *BookingService) requesterPatient(ctx context.Context, requester model.Requester) (*model.Patient, error) {
	if requester.IsAdmin {
		return nil, model.ErrForbidden.WithMessage("only patients can book slots")
	}
	if requester.PersonID == 0 {
		return nil, model.ErrForbidden.WithMessage("requester is not registered")
	}

	person, err := s.persons.GetByID(ctx, requester.PersonID)
	if err != nil {
		return nil, err
	}
	if person == nil || !person.Base().IsActive {
		return nil, model.ErrForbidden.WithMessage("requester is not an active patient")
	}

	patient, ok := person.(*model.Patient)
	if !ok {
		return nil, model.ErrForbidden.WithMessage("only patients can book slots")
	}

	return patient, nil
}

func (s *BookingService) activePerson(ctx context.Context, id int64) (model.Person, error) {
	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil || !person.Base().IsActive {
		return nil, model.ErrNotFound.WithMessage("person %d not found", id)
	}
	return person, nil
}

func (s *BookingService) observe(op string, err error) {
	s.metrics.ObserveTransition(op, outcome(err))
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if code := model.Code(err); code != "" {
		return code
	}
	return "error"
}

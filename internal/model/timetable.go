package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotState string

const (
	SlotFree   SlotState = "free"
	SlotBooked SlotState = "booked"
)

// Timetable конкретный слот приёма, создаётся только генератором
type Timetable struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	PatientID *int64    `json:"patient_id"` // nil - слот свободен
	Start     time.Time `json:"start"`
	Stop      time.Time `json:"stop"`
	BatchID   uuid.UUID `json:"batch_id"` // запуск генератора, создавший слот
}

// State возвращает состояние слота
func (t *Timetable) State() SlotState {
	if t.PatientID == nil {
		return SlotFree
	}
	return SlotBooked
}

// BookedBy проверяет что слот занят указанным пациентом
func (t *Timetable) BookedBy(patientID int64) bool {
	return t.PatientID != nil && *t.PatientID == patientID
}

// DayStat количество слотов за календарный день
type DayStat struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

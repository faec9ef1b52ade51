package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/google/uuid"
)

// memStore хранилище в памяти, реализует все интерфейсы сервиса
type memStore struct {
	mu sync.Mutex

	nextID    int64
	persons   map[int64]model.Person
	schedules map[int64]model.Schedule
	intervals []model.DayInterval
	vacations []model.Vacation
	slots     map[int64]*model.Timetable

	bulkCalls   int
	failDoctors map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		persons:     make(map[int64]model.Person),
		schedules:   make(map[int64]model.Schedule),
		slots:       make(map[int64]*model.Timetable),
		failDoctors: make(map[int64]error),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addDoctor(active bool) *model.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &model.Doctor{Profile: model.Profile{ID: m.id(), IsActive: active}}
	m.persons[d.ID] = d
	return d
}

func (m *memStore) addPatient(active bool) *model.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &model.Patient{Profile: model.Profile{ID: m.id(), IsActive: active}}
	m.persons[p.ID] = p
	return p
}

func (m *memStore) addSlot(doctorID int64, start time.Time, d time.Duration) *model.Timetable {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.Timetable{ID: m.id(), DoctorID: doctorID, Start: start, Stop: start.Add(d)}
	m.slots[s.ID] = s
	return s
}

// PersonStore

func (m *memStore) Create(_ context.Context, person model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	person.Base().ID = m.id()
	m.persons[person.Base().ID] = person
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persons[id], nil
}

func (m *memStore) GetByTelegramID(_ context.Context, telegramID int64) (model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.persons {
		if p.Base().TelegramID == telegramID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateProfile(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.persons[p.ID]
	if !ok {
		return model.ErrNotFound
	}
	*existing.Base() = *p
	return nil
}

func (m *memStore) SetActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return model.ErrNotFound
	}
	p.Base().IsActive = active
	return nil
}

func (m *memStore) SetDoctor(_ context.Context, id int64, isDoctor bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return model.ErrNotFound
	}
	m.persons[id] = model.NewPerson(*p.Base(), isDoctor)
	return nil
}

func (m *memStore) ListActiveDoctors(_ context.Context) ([]*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*model.Doctor
	for _, p := range m.persons {
		if d, ok := p.(*model.Doctor); ok && d.IsActive {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// AvailabilityStore

func (m *memStore) UpsertSchedule(_ context.Context, schedule *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[schedule.DoctorID] = *schedule
	return nil
}

func (m *memStore) GetSchedule(_ context.Context, doctorID int64) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[doctorID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) ListGenerationTargets(_ context.Context) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Schedule
	for id, s := range m.schedules {
		if d, ok := m.persons[id].(*model.Doctor); ok && d.IsActive {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DoctorID < res[j].DoctorID })
	return res, nil
}

func (m *memStore) AddInterval(_ context.Context, interval *model.DayInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	interval.ID = m.id()
	m.intervals = append(m.intervals, *interval)
	return nil
}

func (m *memStore) DeleteInterval(_ context.Context, doctorID, intervalID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, in := range m.intervals {
		if in.ID == intervalID && in.DoctorID == doctorID {
			m.intervals = append(m.intervals[:i], m.intervals[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *memStore) ListIntervals(_ context.Context, doctorID int64, weekdays []model.Weekday) ([]model.DayInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.DayInterval
	for _, in := range m.intervals {
		if in.DoctorID != doctorID {
			continue
		}
		if len(weekdays) > 0 && !containsWeekday(weekdays, in.Weekday) {
			continue
		}
		res = append(res, in)
	}
	return res, nil
}

func containsWeekday(list []model.Weekday, w model.Weekday) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

func (m *memStore) AddVacation(_ context.Context, vacation *model.Vacation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vacation.ID = m.id()
	m.vacations = append(m.vacations, *vacation)
	return nil
}

func (m *memStore) DeleteVacation(_ context.Context, doctorID, vacationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.vacations {
		if v.ID == vacationID && v.DoctorID == doctorID {
			m.vacations = append(m.vacations[:i], m.vacations[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *memStore) ListVacations(_ context.Context, doctorID int64, from, to time.Time) ([]model.Vacation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Vacation
	for _, v := range m.vacations {
		if v.DoctorID == doctorID &&
			model.DateKey(v.StartDate) <= model.DateKey(to) &&
			model.DateKey(v.StopDate) >= model.DateKey(from) {
			res = append(res, v)
		}
	}
	return res, nil
}

// TimetableStore

func (m *memStore) BulkCreate(_ context.Context, slots []model.Timetable, batchID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++
	if len(slots) > 0 {
		if err, ok := m.failDoctors[slots[0].DoctorID]; ok {
			return 0, err
		}
	}
	for _, s := range slots {
		for _, existing := range m.slots {
			if existing.DoctorID == s.DoctorID && existing.Start.Equal(s.Start) {
				return 0, errors.New("duplicate key value violates unique constraint")
			}
		}
	}
	for _, s := range slots {
		s := s
		s.ID = m.id()
		s.BatchID = batchID
		m.slots[s.ID] = &s
	}
	return int64(len(slots)), nil
}

func (m *memStore) ProcessedDays(_ context.Context, doctorID int64, from, to time.Time, loc *time.Location) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := make(map[string]struct{})
	for _, s := range m.slots {
		if s.DoctorID == doctorID && !s.Start.Before(from) && s.Start.Before(to) {
			days[model.DateKey(s.Start.In(loc))] = struct{}{}
		}
	}
	return days, nil
}

func (m *memStore) ListFreeByDoctor(_ context.Context, doctorID int64, now time.Time) ([]*model.Timetable, error) {
	return m.list(func(s *model.Timetable) bool {
		return s.DoctorID == doctorID && s.PatientID == nil && s.Start.After(now)
	}), nil
}

func (m *memStore) ListByPatient(_ context.Context, patientID int64, now time.Time) ([]*model.Timetable, error) {
	return m.list(func(s *model.Timetable) bool {
		return s.BookedBy(patientID) && s.Start.After(now)
	}), nil
}

func (m *memStore) list(match func(*model.Timetable) bool) []*model.Timetable {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*model.Timetable
	for _, s := range m.slots {
		if match(s) {
			c := *s
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Start.Before(res[j].Start) })
	return res
}

// Claim повторяет условный UPDATE репозитория под мьютексом
func (m *memStore) Claim(_ context.Context, slotID, patientID int64, now time.Time) (*model.Timetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok || !s.Start.After(now) {
		return nil, model.ErrNotFound
	}
	if s.PatientID != nil {
		return nil, model.ErrAlreadyBooked
	}
	id := patientID
	s.PatientID = &id
	c := *s
	return &c, nil
}

func (m *memStore) Release(_ context.Context, slotID, patientID int64, asAdmin bool, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok || s.PatientID == nil || !s.Start.After(now) {
		return model.ErrNotFound
	}
	if !asAdmin && *s.PatientID != patientID {
		return model.ErrForbidden
	}
	s.PatientID = nil
	return nil
}

func (m *memStore) DailyStatistics(_ context.Context, tz string) ([]model.DayStat, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, s := range m.slots {
		counts[model.DateKey(s.Start.In(loc))]++
	}
	var res []model.DayStat
	for k, c := range counts {
		day, _ := time.ParseInLocation(time.DateOnly, k, loc)
		res = append(res, model.DayStat{Day: day, Count: c})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Day.Before(res[j].Day) })
	return res, nil
}

// Package generator раскладывает регулярное расписание врача в конкретные слоты.
// Пакет не ходит в базу и не смотрит на часы: всё время передаётся параметрами.
package generator

import (
	"sort"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
)

// Availability всё, что нужно знать о враче для одного запуска генерации
type Availability struct {
	DoctorID  int64
	Schedule  model.Schedule
	Intervals []model.DayInterval
	Vacations []model.Vacation
	// ProcessedDays дни окна, в которых уже есть хотя бы один слот (ключи model.DateKey)
	ProcessedDays map[string]struct{}
}

// Window возвращает полуоткрытый диапазон [from, to) окна планирования
func Window(schedule model.Schedule, now time.Time) (from, to time.Time) {
	from = startOfDay(now)
	to = from.AddDate(0, 0, schedule.PlanningDays)
	return from, to
}

// Days возвращает дни окна, для которых ещё нужно сгенерировать слоты
func Days(a Availability, now time.Time) []time.Time {
	if !a.Schedule.Valid() {
		return nil
	}

	from, _ := Window(a.Schedule, now)
	days := make([]time.Time, 0, a.Schedule.PlanningDays)

	for i := 0; i < a.Schedule.PlanningDays; i++ {
		day := from.AddDate(0, 0, i)

		// День генерируется целиком или не генерируется вовсе
		if _, done := a.ProcessedDays[model.DateKey(day)]; done {
			continue
		}

		if onVacation(day, a.Vacations) {
			continue
		}

		days = append(days, day)
	}

	return days
}

// Plan строит недостающие слоты врача на окно планирования
func Plan(a Availability, now time.Time) []model.Timetable {
	days := Days(a, now)
	if len(days) == 0 {
		return nil
	}

	byWeekday := make(map[model.Weekday][]model.DayInterval, len(a.Intervals))
	for _, interval := range a.Intervals {
		if interval.DoctorID != 0 && interval.DoctorID != a.DoctorID {
			continue
		}
		byWeekday[interval.Weekday] = append(byWeekday[interval.Weekday], interval)
	}

	session := a.Schedule.Session()

	for w := range byWeekday {
		sort.Slice(byWeekday[w], func(i, j int) bool { return byWeekday[w][i].Start < byWeekday[w][j].Start })
	}

	var slots []model.Timetable
	for _, day := range days {
		// Пересекающиеся окна не должны давать пересекающиеся слоты в одном дне
		var last time.Time
		for _, interval := range byWeekday[model.WeekdayOf(day)] {
			for _, slot := range Carve(a.DoctorID, day, interval, session) {
				if slot.Start.Before(last) {
					continue
				}
				slots = append(slots, slot)
				last = slot.Stop
			}
		}
	}

	return slots
}

// Carve режет интервал на последовательные слоты длиной session.
// Хвост короче session отбрасывается.
func Carve(doctorID int64, day time.Time, interval model.DayInterval, session time.Duration) []model.Timetable {
	if session <= 0 {
		return nil
	}

	stop := atClock(day, interval.Stop)

	var slots []model.Timetable
	for cursor := atClock(day, interval.Start); !cursor.Add(session).After(stop); cursor = cursor.Add(session) {
		slots = append(slots, model.Timetable{
			DoctorID: doctorID,
			Start:    cursor,
			Stop:     cursor.Add(session),
		})
	}

	return slots
}

func onVacation(day time.Time, vacations []model.Vacation) bool {
	for _, v := range vacations {
		if v.Covers(day) {
			return true
		}
	}
	return false
}

// atClock ставит настенное время дня, чтобы переход на летнее время не сдвигал окно
func atClock(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, int(offset), day.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

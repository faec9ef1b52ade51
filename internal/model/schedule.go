package model

import (
	"fmt"
	"strconv"
	"time"
)

// Schedule параметры генерации слотов врача
type Schedule struct {
	DoctorID        int64     `json:"doctor_id"`
	PlanningDays    int       `json:"planning_days"`    // на сколько дней вперёд генерировать
	SessionDuration int       `json:"session_duration"` // длительность приёма в минутах
	UpdatedAt       time.Time `json:"updated_at"`
}

// Valid проверяет что по расписанию можно генерировать слоты
func (s *Schedule) Valid() bool {
	return s != nil && s.PlanningDays > 0 && s.SessionDuration > 0
}

// Session возвращает длительность приёма
func (s *Schedule) Session() time.Duration {
	return time.Duration(s.SessionDuration) * time.Minute
}

// Weekday день недели, 0 = понедельник, 6 = воскресенье
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid проверяет диапазон 0-6
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// WeekdayOf переводит time.Weekday (0 = воскресенье) в нашу нумерацию
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ParseWeekday принимает номер 0-6 или сокращение MON..SUN
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if name == s {
			return Weekday(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Weekday(n).Valid() {
		return Weekday(n), nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// DayInterval регулярное окно приёма в конкретный день недели
type DayInterval struct {
	ID       int64         `json:"id"`
	DoctorID int64         `json:"doctor_id"`
	Weekday  Weekday       `json:"weekday"`
	Start    time.Duration `json:"start"` // смещение от полуночи
	Stop     time.Duration `json:"stop"`
}

// Overlaps проверяет пересечение окон; касание границами пересечением не считается
func (i DayInterval) Overlaps(other DayInterval) bool {
	return i.Start < other.Stop && other.Start < i.Stop
}

// Vacation отпуск врача, границы включительно
type Vacation struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	StartDate time.Time `json:"start_date"`
	StopDate  time.Time `json:"stop_date"`
}

// Covers проверяет попадает ли календарный день в отпуск
func (v Vacation) Covers(day time.Time) bool {
	d := DateKey(day)
	return d >= DateKey(v.StartDate) && d <= DateKey(v.StopDate)
}

// DateKey календарная дата в виде YYYY-MM-DD без учёта часового пояса
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatClock печатает смещение от полуночи как HH:MM
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// ParseClock разбирает HH:MM в смещение от полуночи, 24:00 означает конец дня
func ParseClock(s string) (time.Duration, error) {
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

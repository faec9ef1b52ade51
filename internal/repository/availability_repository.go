package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/Freeeeeet/ybooking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// AvailabilityRepository управляет расписанием, интервалами и отпусками врачей
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAvailabilityRepository создаёт новый репозиторий
func NewAvailabilityRepository(db base.DB, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		Repository: base.NewRepository(db),
		logger:     logger,
	}
}

// UpsertSchedule создаёт или обновляет параметры генерации врача
func (r *AvailabilityRepository) UpsertSchedule(ctx context.Context, schedule *model.Schedule) error {
	query := `
		INSERT INTO schedules (doctor_id, planning_days, session_duration)
		VALUES ($1, $2, $3)
		ON CONFLICT (doctor_id) DO UPDATE
		SET planning_days = EXCLUDED.planning_days,
		    session_duration = EXCLUDED.session_duration,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.DB().QueryRow(ctx, query, schedule.DoctorID, schedule.PlanningDays, schedule.SessionDuration).
		Scan(&schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}

	return nil
}

// GetSchedule получает параметры генерации врача, nil если не заданы
func (r *AvailabilityRepository) GetSchedule(ctx context.Context, doctorID int64) (*model.Schedule, error) {
	query := `
		SELECT doctor_id, planning_days, session_duration, updated_at
		FROM schedules
		WHERE doctor_id = $1
	`

	schedule := &model.Schedule{}
	err := r.DB().QueryRow(ctx, query, doctorID).Scan(
		&schedule.DoctorID,
		&schedule.PlanningDays,
		&schedule.SessionDuration,
		&schedule.UpdatedAt,
	)

	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	return schedule, nil
}

// ListGenerationTargets получает расписания активных врачей с корректными параметрами.
// Врачи с planning_days <= 0 или session_duration <= 0 сюда не попадают.
func (r *AvailabilityRepository) ListGenerationTargets(ctx context.Context) ([]model.Schedule, error) {
	query := `
		SELECT s.doctor_id, s.planning_days, s.session_duration, s.updated_at
		FROM schedules s
		JOIN persons p ON p.id = s.doctor_id
		WHERE p.is_doctor = true
		  AND p.is_active = true
		  AND s.planning_days > 0
		  AND s.session_duration > 0
		ORDER BY s.doctor_id
	`

	rows, err := r.DB().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list generation targets: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		var s model.Schedule
		if err := rows.Scan(&s.DoctorID, &s.PlanningDays, &s.SessionDuration, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}

// AddInterval добавляет регулярное окно приёма
func (r *AvailabilityRepository) AddInterval(ctx context.Context, interval *model.DayInterval) error {
	query := `
		INSERT INTO day_intervals (doctor_id, weekday, start_time, stop_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.DB().QueryRow(
		ctx, query,
		interval.DoctorID,
		int(interval.Weekday),
		toPgTime(interval.Start),
		toPgTime(interval.Stop),
	).Scan(&interval.ID)

	if err != nil {
		return fmt.Errorf("add interval: %w", err)
	}

	return nil
}

// DeleteInterval удаляет окно приёма врача
func (r *AvailabilityRepository) DeleteInterval(ctx context.Context, doctorID, intervalID int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM day_intervals WHERE id = $1 AND doctor_id = $2`, intervalID, doctorID)
	if err != nil {
		return fmt.Errorf("delete interval: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFound.WithMessage("interval %d not found", intervalID)
	}

	return nil
}

// ListIntervals получает окна приёма врача. Пустой weekdays означает все дни недели.
func (r *AvailabilityRepository) ListIntervals(ctx context.Context, doctorID int64, weekdays []model.Weekday) ([]model.DayInterval, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, stop_time
		FROM day_intervals
		WHERE doctor_id = $1
		  AND (cardinality($2::int[]) = 0 OR weekday = ANY($2::int[]))
		ORDER BY weekday, start_time
	`

	days := make([]int, 0, len(weekdays))
	for _, w := range weekdays {
		days = append(days, int(w))
	}

	rows, err := r.DB().Query(ctx, query, doctorID, days)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	defer rows.Close()

	var intervals []model.DayInterval
	for rows.Next() {
		var (
			interval    model.DayInterval
			weekday     int
			start, stop pgtype.Time
		)
		if err := rows.Scan(&interval.ID, &interval.DoctorID, &weekday, &start, &stop); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		interval.Weekday = model.Weekday(weekday)
		interval.Start = fromPgTime(start)
		interval.Stop = fromPgTime(stop)
		intervals = append(intervals, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}

	return intervals, nil
}

// AddVacation добавляет отпуск врача
func (r *AvailabilityRepository) AddVacation(ctx context.Context, vacation *model.Vacation) error {
	query := `
		INSERT INTO vacations (doctor_id, start_date, stop_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.DB().QueryRow(ctx, query, vacation.DoctorID, toPgDate(vacation.StartDate), toPgDate(vacation.StopDate)).
		Scan(&vacation.ID)
	if err != nil {
		return fmt.Errorf("add vacation: %w", err)
	}

	return nil
}

// DeleteVacation удаляет отпуск врача
func (r *AvailabilityRepository) DeleteVacation(ctx context.Context, doctorID, vacationID int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM vacations WHERE id = $1 AND doctor_id = $2`, vacationID, doctorID)
	if err != nil {
		return fmt.Errorf("delete vacation: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFound.WithMessage("vacation %d not found", vacationID)
	}

	return nil
}

// ListVacations получает отпуска врача, пересекающиеся с датами [from, to] включительно
func (r *AvailabilityRepository) ListVacations(ctx context.Context, doctorID int64, from, to time.Time) ([]model.Vacation, error) {
	query := `
		SELECT id, doctor_id, start_date, stop_date
		FROM vacations
		WHERE doctor_id = $1
		  AND start_date <= $3
		  AND stop_date >= $2
		ORDER BY start_date
	`

	rows, err := r.DB().Query(ctx, query, doctorID, toPgDate(from), toPgDate(to))
	if err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	defer rows.Close()

	var vacations []model.Vacation
	for rows.Next() {
		var (
			v           model.Vacation
			start, stop pgtype.Date
		)
		if err := rows.Scan(&v.ID, &v.DoctorID, &start, &stop); err != nil {
			return nil, fmt.Errorf("scan vacation: %w", err)
		}
		v.StartDate = start.Time
		v.StopDate = stop.Time
		vacations = append(vacations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vacations: %w", err)
	}

	r.logger.Debug("Vacations loaded",
		zap.Int64("doctor_id", doctorID),
		zap.Int("count", len(vacations)),
	)

	return vacations, nil
}

func toPgTime(d time.Duration) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) time.Duration {
	return time.Duration(t.Microseconds) * time.Microsecond
}

// toPgDate отбрасывает время и часовой пояс, оставляя календарную дату
func toPgDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/Freeeeeet/ybooking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const timetableColumns = `id, doctor_id, patient_id, start, stop, batch_id`

type TimetableRepository struct {
	*base.Repository
}

func NewTimetableRepository(db base.DB) *TimetableRepository {
	return &TimetableRepository{Repository: base.NewRepository(db)}
}

// BulkCreate записывает слоты одной командой COPY
func (r *TimetableRepository) BulkCreate(ctx context.Context, slots []model.Timetable, batchID uuid.UUID) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, []any{s.DoctorID, s.PatientID, s.Start, s.Stop, batchID})
	}

	n, err := r.DB().CopyFrom(
		ctx,
		pgx.Identifier{"timetable"},
		[]string{"doctor_id", "patient_id", "start", "stop", "batch_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk create timetable: %w", err)
	}

	return n, nil
}

// ProcessedDays возвращает календарные дни (в часовом поясе loc), в которых у врача
// уже есть хотя бы один слот в диапазоне [from, to)
func (r *TimetableRepository) ProcessedDays(ctx context.Context, doctorID int64, from, to time.Time, loc *time.Location) (map[string]struct{}, error) {
	query := `
		SELECT start
		FROM timetable
		WHERE doctor_id = $1
		  AND start >= $2
		  AND start < $3
	`

	rows, err := r.DB().Query(ctx, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get processed days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]struct{})
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, fmt.Errorf("scan processed day: %w", err)
		}
		days[model.DateKey(start.In(loc))] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed days: %w", err)
	}

	return days, nil
}

// ListFreeByDoctor получает свободные будущие слоты врача
func (r *TimetableRepository) ListFreeByDoctor(ctx context.Context, doctorID int64, now time.Time) ([]*model.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetable
		WHERE doctor_id = $1
		  AND patient_id IS NULL
		  AND start > $2
		ORDER BY start
	`

	return r.list(ctx, "list free slots", query, doctorID, now)
}

// ListByPatient получает будущие слоты, занятые пациентом
func (r *TimetableRepository) ListByPatient(ctx context.Context, patientID int64, now time.Time) ([]*model.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetable
		WHERE patient_id = $1
		  AND start > $2
		ORDER BY start
	`

	return r.list(ctx, "list patient slots", query, patientID, now)
}

// Claim занимает слот одной условной командой UPDATE.
// Если строка не обновилась, в той же транзакции перечитываем слот,
// чтобы отличить "уже занят" от "не найден".
func (r *TimetableRepository) Claim(ctx context.Context, slotID, patientID int64, now time.Time) (*model.Timetable, error) {
	query := `
		UPDATE timetable
		SET patient_id = $1
		WHERE id = $2
		  AND patient_id IS NULL
		  AND start > $3
		RETURNING ` + timetableColumns

	var claimed *model.Timetable
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		slot, err := scanTimetable(tx.QueryRow(ctx, query, patientID, slotID, now))
		if err == nil {
			claimed = slot
			return nil
		}
		if !base.IsNotFound(err) {
			return fmt.Errorf("claim slot: %w", err)
		}

		current, err := recheck(ctx, tx, slotID)
		if err != nil {
			return err
		}

		switch {
		case current == nil || !current.Start.After(now):
			return model.ErrNotFound.WithMessage("slot %d not found", slotID)
		default:
			// Либо занят другим, либо освободился между UPDATE и SELECT: повторять не нужно
			return model.ErrAlreadyBooked.WithMessage("slot %d already booked", slotID)
		}
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

// Release освобождает слот. Снять запись может только сам пациент или администратор.
func (r *TimetableRepository) Release(ctx context.Context, slotID, patientID int64, asAdmin bool, now time.Time) error {
	query := `
		UPDATE timetable
		SET patient_id = NULL
		WHERE id = $1
		  AND patient_id IS NOT NULL
		  AND start > $2
		  AND ($3 OR patient_id = $4)
		RETURNING id
	`

	return r.InTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, query, slotID, now, asAdmin, patientID).Scan(&id)
		if err == nil {
			return nil
		}
		if !base.IsNotFound(err) {
			return fmt.Errorf("release slot: %w", err)
		}

		current, err := recheck(ctx, tx, slotID)
		if err != nil {
			return err
		}

		switch {
		case current == nil || !current.Start.After(now) || current.State() == model.SlotFree:
			return model.ErrNotFound.WithMessage("slot %d has no booking", slotID)
		default:
			return model.ErrForbidden.WithMessage("slot %d is booked by another patient", slotID)
		}
	})
}

// DailyStatistics считает слоты по календарным дням в часовом поясе tz
func (r *TimetableRepository) DailyStatistics(ctx context.Context, tz string) ([]model.DayStat, error) {
	query := `
		SELECT (start AT TIME ZONE $1)::date AS day, COUNT(*)
		FROM timetable
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.DB().Query(ctx, query, tz)
	if err != nil {
		return nil, fmt.Errorf("daily statistics: %w", err)
	}
	defer rows.Close()

	var stats []model.DayStat
	for rows.Next() {
		var (
			day   pgtype.Date
			count int64
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan day stat: %w", err)
		}
		stats = append(stats, model.DayStat{Day: day.Time, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day stats: %w", err)
	}

	return stats, nil
}

func (r *TimetableRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Timetable, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.Timetable
	for rows.Next() {
		slot, err := scanTimetable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func recheck(ctx context.Context, tx pgx.Tx, slotID int64) (*model.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetable WHERE id = $1`

	slot, err := scanTimetable(tx.QueryRow(ctx, query, slotID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("recheck slot: %w", err)
	}

	return slot, nil
}

func scanTimetable(row pgx.Row) (*model.Timetable, error) {
	var slot model.Timetable
	err := row.Scan(
		&slot.ID,
		&slot.DoctorID,
		&slot.PatientID,
		&slot.Start,
		&slot.Stop,
		&slot.BatchID,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

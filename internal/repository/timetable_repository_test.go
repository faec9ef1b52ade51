package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/ybooking/internal/model"
)

var timetableCols = []string{"id", "doctor_id", "patient_id", "start", "stop", "batch_id"}

// Условия UPDATE, на которых держится защита от двойной записи
const (
	claimSQL   = `UPDATE timetable\s+SET patient_id = \$1\s+WHERE id = \$2\s+AND patient_id IS NULL\s+AND start > \$3`
	releaseSQL = `UPDATE timetable\s+SET patient_id = NULL\s+WHERE id = \$1\s+AND patient_id IS NOT NULL\s+AND start > \$2\s+AND \(\$3 OR patient_id = \$4\)`
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func ptr(v int64) *int64 { return &v }

func TestTimetableClaimSucceeds(t *testing.T) {
	mock := newMock(t)
	repo := NewTimetableRepository(mock)

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)
	batch := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(claimSQL).
		WithArgs(int64(7), int64(1), now).
		WillReturnRows(pgxmock.NewRows(timetableCols).
			AddRow(int64(1), int64(3), ptr(7), start, start.Add(30*time.Minute), batch))
	mock.ExpectCommit()

	slot, err := repo.Claim(context.Background(), 1, 7, now)
	require.NoError(t, err)
	assert.True(t, slot.BookedBy(7))
	assert.Equal(t, batch, slot.BatchID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableClaimAlreadyBooked(t *testing.T) {
	mock := newMock(t)
	repo := NewTimetableRepository(mock)

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(claimSQL).WithArgs(int64(8), int64(1), now).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM timetable WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(timetableCols).
			AddRow(int64(1), int64(3), ptr(7), start, start.Add(30*time.Minute), uuid.New()))
	mock.ExpectRollback()

	_, err := repo.Claim(context.Background(), 1, 8, now)
	assert.True(t, errors.Is(err, model.ErrAlreadyBooked))
	assert.False(t, errors.Is(err, model.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableClaimNotFound(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTimetableRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(claimSQL).WithArgs(int64(8), int64(99), now).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM timetable WHERE id").WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Claim(context.Background(), 99, 8, now)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in the past", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTimetableRepository(mock)
		start := now.Add(-time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery(claimSQL).WithArgs(int64(8), int64(1), now).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM timetable WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(timetableCols).
				AddRow(int64(1), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), uuid.New()))
		mock.ExpectRollback()

		_, err := repo.Claim(context.Background(), 1, 8, now)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimetableRelease(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)

	t.Run("owner", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTimetableRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(releaseSQL).
			WithArgs(int64(1), now, false, int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectCommit()

		require.NoError(t, repo.Release(context.Background(), 1, 7, false, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's booking", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTimetableRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(releaseSQL).WithArgs(int64(1), now, false, int64(8)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM timetable WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(timetableCols).
				AddRow(int64(1), int64(3), ptr(7), start, start.Add(30*time.Minute), uuid.New()))
		mock.ExpectRollback()

		err := repo.Release(context.Background(), 1, 8, false, now)
		assert.True(t, errors.Is(err, model.ErrForbidden))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTimetableRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(releaseSQL).WithArgs(int64(1), now, false, int64(7)).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM timetable WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(timetableCols).
				AddRow(int64(1), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), uuid.New()))
		mock.ExpectRollback()

		err := repo.Release(context.Background(), 1, 7, false, now)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimetableBulkCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewTimetableRepository(mock)

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	slots := []model.Timetable{
		{DoctorID: 3, Start: start, Stop: start.Add(30 * time.Minute)},
		{DoctorID: 3, Start: start.Add(30 * time.Minute), Stop: start.Add(time.Hour)},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"timetable"}, []string{"doctor_id", "patient_id", "start", "stop", "batch_id"}).
		WillReturnResult(2)

	n, err := repo.BulkCreate(context.Background(), slots, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.BulkCreate(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableProcessedDays(t *testing.T) {
	mock := newMock(t)
	repo := NewTimetableRepository(mock)

	loc := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2026, 10, 15, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery("SELECT start").
		WithArgs(int64(3), from, to).
		WillReturnRows(pgxmock.NewRows([]string{"start"}).
			AddRow(time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 10, 15, 7, 0, 0, 0, time.UTC)).
			// 22:30 UTC это уже следующий день в UTC+3
			AddRow(time.Date(2026, 10, 16, 22, 30, 0, 0, time.UTC)))

	days, err := repo.ProcessedDays(context.Background(), 3, from, to, loc)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"2026-10-15": {}, "2026-10-17": {}}, days)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableListFreeByDoctor(t *testing.T) {
	mock := newMock(t)
	repo := NewTimetableRepository(mock)

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)

	mock.ExpectQuery("patient_id IS NULL").
		WithArgs(int64(3), now).
		WillReturnRows(pgxmock.NewRows(timetableCols).
			AddRow(int64(1), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), uuid.New()).
			AddRow(int64(2), int64(3), (*int64)(nil), start.Add(30*time.Minute), start.Add(time.Hour), uuid.New()))

	slots, err := repo.ListFreeByDoctor(context.Background(), 3, now)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.SlotFree, slots[0].State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

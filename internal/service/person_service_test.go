package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegister(t *testing.T) {
	store := newMemStore()
	svc := NewPersonService(store, store, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Register(ctx, 100, "ivan", "Иван", "Иванов")
	require.NoError(t, err)

	patient, ok := p.(*model.Patient)
	require.True(t, ok)
	assert.NotZero(t, patient.ID)
	assert.True(t, patient.IsActive)
	assert.Equal(t, model.SexUndefined, patient.Sex)

	again, err := svc.Register(ctx, 100, "ivan_new", "Иван", "Петров")
	require.NoError(t, err)
	assert.Equal(t, patient.ID, again.Base().ID)
	assert.Equal(t, "ivan_new", again.Base().Username)
	assert.Equal(t, "Петров", again.Base().LastName)
	assert.Len(t, store.persons, 1)
}

func TestMakeDoctor(t *testing.T) {
	store := newMemStore()
	svc := NewPersonService(store, store, zap.NewNop())
	ctx := context.Background()
	patient := store.addPatient(true)

	err := svc.MakeDoctor(ctx, model.Requester{PersonID: patient.ID}, patient.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, svc.MakeDoctor(ctx, model.Requester{IsAdmin: true}, patient.ID))

	p, err := svc.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.True(t, model.IsDoctor(p))

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, patient.ID, doctors[0].ID)

	err = svc.MakeDoctor(ctx, model.Requester{IsAdmin: true}, 404)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMakeDoctor_RefusesPatientWithUpcomingBookings(t *testing.T) {
	store := newMemStore()
	svc := NewPersonService(store, store, zap.NewNop())
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	admin := model.Requester{IsAdmin: true}
	doctor := store.addDoctor(true)
	patient := store.addPatient(true)

	past := store.addSlot(doctor.ID, now.Add(-time.Hour), 30*time.Minute)
	past.PatientID = &patient.ID
	upcoming := store.addSlot(doctor.ID, now.Add(time.Hour), 30*time.Minute)
	upcoming.PatientID = &patient.ID

	err := svc.MakeDoctor(ctx, admin, patient.ID)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	p, err := svc.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.False(t, model.IsDoctor(p))

	// после отмены будущей записи прошлая не мешает
	require.NoError(t, store.Release(ctx, upcoming.ID, patient.ID, false, now))
	require.NoError(t, svc.MakeDoctor(ctx, admin, patient.ID))
}

func TestBlockUnblock(t *testing.T) {
	store := newMemStore()
	svc := NewPersonService(store, store, zap.NewNop())
	ctx := context.Background()
	admin := model.Requester{IsAdmin: true}
	doctor := store.addDoctor(true)

	assert.ErrorIs(t, svc.Block(ctx, model.Requester{PersonID: doctor.ID}, doctor.ID), model.ErrForbidden)

	require.NoError(t, svc.Block(ctx, admin, doctor.ID))
	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Empty(t, doctors)

	require.NoError(t, svc.Unblock(ctx, admin, doctor.ID))
	doctors, err = svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
}

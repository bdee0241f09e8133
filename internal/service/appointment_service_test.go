package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

type stubAppointmentRepo struct {
	appt        *models.Appointment
	versionSeen int64
}

func (s *stubAppointmentRepo) List(context.Context, models.AppointmentFilter) ([]models.Appointment, int, error) {
	return nil, 0, nil
}

func (s *stubAppointmentRepo) ListByDate(context.Context, time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) FindByID(context.Context, string) (*models.Appointment, error) {
	copied := *s.appt
	return &copied, nil
}

func (s *stubAppointmentRepo) Create(_ context.Context, appt *models.Appointment) error {
	s.appt = appt
	return nil
}

func (s *stubAppointmentRepo) UpdateVersioned(_ context.Context, appt *models.Appointment, expectedVersion int64) error {
	s.versionSeen = expectedVersion
	if s.appt.SaveVersion != expectedVersion {
		return appErrors.Clone(appErrors.ErrVersionConflict, "")
	}
	updated := *appt
	updated.SaveVersion = expectedVersion + 1
	s.appt = &updated
	return nil
}

func (s *stubAppointmentRepo) UpdateStatus(_ context.Context, _ string, status models.AppointmentStatus) error {
	s.appt.Status = status
	return nil
}

func (s *stubAppointmentRepo) Delete(context.Context, string) error { return nil }

func TestAppointmentUpdateVersionConflict(t *testing.T) {
	repo := &stubAppointmentRepo{appt: &models.Appointment{
		ID:          "s1",
		Date:        testDay,
		PatientName: "Rao",
		SaveVersion: 3,
	}}
	svc := NewAppointmentService(repo, nil, nil)

	name := "Raolo"
	_, err := svc.Update(context.Background(), "s1", dto.UpdateAppointmentRequest{
		PatientName: &name,
		SaveVersion: 2, // stale
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrVersionConflict.Code, appErr.Code)
	assert.Equal(t, "Rao", repo.appt.PatientName, "a stale save version must not apply the write")

	updated, err := svc.Update(context.Background(), "s1", dto.UpdateAppointmentRequest{
		PatientName: &name,
		SaveVersion: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Raolo", updated.PatientName)
	assert.Equal(t, int64(4), repo.appt.SaveVersion)
}

func TestAppointmentUpdateStatusRejectsUnknown(t *testing.T) {
	repo := &stubAppointmentRepo{appt: &models.Appointment{ID: "s1", Date: testDay, Status: models.StatusPending}}
	svc := NewAppointmentService(repo, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "s1", dto.UpdateStatusRequest{Status: "NAPPING"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	got, err := svc.UpdateStatus(context.Background(), "s1", dto.UpdateStatusRequest{Status: "ongoing"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, got.Status)
}

func TestAppointmentCreateValidatesDate(t *testing.T) {
	svc := NewAppointmentService(&stubAppointmentRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateAppointmentRequest{
		Date:        "10-03-2025",
		PatientName: "Rao",
		DoctorName:  "SMITH",
		StartTime:   "10:00",
		EndTime:     "10:30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

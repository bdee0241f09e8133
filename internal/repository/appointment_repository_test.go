package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

func newAppointmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func appointmentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "date", "patient_name", "doctor_name", "op_room", "start_time", "end_time",
		"procedure", "first_assistant", "second_assistant", "third_assistant", "status",
		"status_changed_at", "arrived_at", "started_at", "finished_at", "save_version",
		"created_at", "updated_at",
	}).AddRow("a1", now, "PATIENT", "DR. SMITH", "OP-1", "10:00", "10:30",
		"Filling", "", "", "", "PENDING", nil, nil, nil, nil, int64(1), now, now)
}

func TestAppointmentRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE date = \\$1 ORDER BY created_at ASC, id ASC").
		WithArgs("2025-03-10").
		WillReturnRows(appointmentRows())

	list, err := repo.ListByDate(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "DR. SMITH", list[0].DoctorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateVersionedConflict(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("UPDATE appointments SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	appt := &models.Appointment{ID: "a1", SaveVersion: 3}
	err := repo.UpdateVersioned(context.Background(), appt, 2)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrVersionConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateAssignments(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET first_assistant = $2, second_assistant = $3, third_assistant = $4, save_version = save_version + 1, updated_at = $5 WHERE id = $1")).
		WithArgs("a1", "ANNA", "BELLA", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateAssignments(context.Background(), "a1", models.Assignment{First: "ANNA", Second: "BELLA"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatusStampsAudit(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("UPDATE appointments SET status = \\$2, status_changed_at = \\$3, updated_at = \\$3, arrived_at = \\$3 WHERE id = \\$1").
		WithArgs("a1", models.StatusArrived, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "a1", models.StatusArrived))
	assert.NoError(t, mock.ExpectationsWereMet())
}

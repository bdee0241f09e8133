package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

const appointmentColumns = "id, date, patient_name, doctor_name, op_room, start_time, end_time, procedure, first_assistant, second_assistant, third_assistant, status, status_changed_at, arrived_at, started_at, finished_at, save_version, created_at, updated_at"

// AppointmentRepository provides persistence for appointment slots.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments with optional filtering and pagination.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date.Format("2006-01-02"))
	}
	if filter.DoctorName != "" {
		conditions = append(conditions, fmt.Sprintf("UPPER(doctor_name) = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.DoctorName))
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"start_time": true,
		"op_room":    true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_time"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", appointmentColumns, base, sortBy, order, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appointments, total, nil
}

// ListByDate returns the full day schedule in stable document order.
func (r *AppointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE date = $1 ORDER BY created_at ASC, id ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return appointments, nil
}

// FindByID loads a single appointment.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create stores a new appointment slot.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	if appt.Status == "" {
		appt.Status = models.StatusPending
	}
	if appt.SaveVersion == 0 {
		appt.SaveVersion = 1
	}

	const query = `INSERT INTO appointments (id, date, patient_name, doctor_name, op_room, start_time, end_time, procedure, first_assistant, second_assistant, third_assistant, status, save_version, created_at, updated_at) VALUES (:id, :date, :patient_name, :doctor_name, :op_room, :start_time, :end_time, :procedure, :first_assistant, :second_assistant, :third_assistant, :status, :save_version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// UpdateVersioned writes the row only when the caller still holds the
// current save version; a mismatch reports a version conflict without
// applying the write.
func (r *AppointmentRepository) UpdateVersioned(ctx context.Context, appt *models.Appointment, expectedVersion int64) error {
	appt.UpdatedAt = time.Now().UTC()

	const query = `UPDATE appointments SET patient_name = :patient_name, doctor_name = :doctor_name, op_room = :op_room, start_time = :start_time, end_time = :end_time, procedure = :procedure, first_assistant = :first_assistant, second_assistant = :second_assistant, third_assistant = :third_assistant, save_version = save_version + 1, updated_at = :updated_at WHERE id = :id AND save_version = :save_version`
	payload := *appt
	payload.SaveVersion = expectedVersion
	res, err := r.db.NamedExecContext(ctx, query, &payload)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrVersionConflict, "")
	}
	appt.SaveVersion = expectedVersion + 1
	return nil
}

// UpdateAssignments writes back only the three role columns, bumping the
// save version. Used by the allocation engine's merge step.
func (r *AppointmentRepository) UpdateAssignments(ctx context.Context, id string, assignment models.Assignment) error {
	const query = `UPDATE appointments SET first_assistant = $2, second_assistant = $3, third_assistant = $4, save_version = save_version + 1, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, assignment.First, assignment.Second, assignment.Third, time.Now().UTC()); err != nil {
		return fmt.Errorf("update appointment assignments: %w", err)
	}
	return nil
}

// UpdateStatus transitions the lifecycle status and stamps the matching
// audit timestamp.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	now := time.Now().UTC()
	set := []string{"status = $2", "status_changed_at = $3", "updated_at = $3"}
	switch status {
	case models.StatusArrived:
		set = append(set, "arrived_at = $3")
	case models.StatusOngoing:
		set = append(set, "started_at = $3")
	case models.StatusDone, models.StatusCompleted:
		set = append(set, "finished_at = $3")
	}
	query := fmt.Sprintf("UPDATE appointments SET %s WHERE id = $1", strings.Join(set, ", "))
	if _, err := r.db.ExecContext(ctx, query, id, status, now); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// Delete removes an appointment slot.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

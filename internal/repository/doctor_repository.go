package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

const doctorColumns = "id, name, department, specialization, registration_no, active, created_at, updated_at"

// DoctorRepository provides database access for doctor profiles.
type DoctorRepository struct {
	db *sqlx.DB
}

// NewDoctorRepository creates a new doctor repository.
func NewDoctorRepository(db *sqlx.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// List returns doctors based on filters with total count.
func (r *DoctorRepository) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	base := "FROM doctors WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("UPPER(department) = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Department))
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "department": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "name"
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
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", doctorColumns, base, sortBy, order, size, offset)
	var doctors []models.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	return doctors, total, nil
}

// ListActive returns every active doctor profile.
func (r *DoctorRepository) ListActive(ctx context.Context) ([]models.Doctor, error) {
	query := fmt.Sprintf("SELECT %s FROM doctors WHERE active = TRUE ORDER BY name ASC", doctorColumns)
	var doctors []models.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("list active doctors: %w", err)
	}
	return doctors, nil
}

// FindByID loads a doctor by identifier.
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*models.Doctor, error) {
	query := fmt.Sprintf("SELECT %s FROM doctors WHERE id = $1", doctorColumns)
	var doctor models.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Create stores a new doctor profile.
func (r *DoctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID == "" {
		doctor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doctor.CreatedAt.IsZero() {
		doctor.CreatedAt = now
	}
	doctor.UpdatedAt = now

	const query = `INSERT INTO doctors (id, name, department, specialization, registration_no, active, created_at, updated_at) VALUES (:id, :name, :department, :specialization, :registration_no, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doctor); err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

// Update modifies a doctor profile.
func (r *DoctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	doctor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE doctors SET name = :name, department = :department, specialization = :specialization, registration_no = :registration_no, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, doctor); err != nil {
		return fmt.Errorf("update doctor: %w", err)
	}
	return nil
}

// Delete removes a doctor profile.
func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

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

const assistantColumns = "id, name, department, active, weekly_off, created_at, updated_at"

// AssistantRepository provides database access for assistant profiles.
type AssistantRepository struct {
	db *sqlx.DB
}

// NewAssistantRepository creates a new assistant repository.
func NewAssistantRepository(db *sqlx.DB) *AssistantRepository {
	return &AssistantRepository{db: db}
}

// List returns assistants based on filters with total count.
func (r *AssistantRepository) List(ctx context.Context, filter models.AssistantFilter) ([]models.Assistant, int, error) {
	base := "FROM assistants WHERE 1=1"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", assistantColumns, base, sortBy, order, size, offset)
	var assistants []models.Assistant
	if err := r.db.SelectContext(ctx, &assistants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assistants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assistants: %w", err)
	}

	return assistants, total, nil
}

// ListActive returns every active assistant profile.
func (r *AssistantRepository) ListActive(ctx context.Context) ([]models.Assistant, error) {
	query := fmt.Sprintf("SELECT %s FROM assistants WHERE active = TRUE ORDER BY name ASC", assistantColumns)
	var assistants []models.Assistant
	if err := r.db.SelectContext(ctx, &assistants, query); err != nil {
		return nil, fmt.Errorf("list active assistants: %w", err)
	}
	return assistants, nil
}

// FindByID loads an assistant by identifier.
func (r *AssistantRepository) FindByID(ctx context.Context, id string) (*models.Assistant, error) {
	query := fmt.Sprintf("SELECT %s FROM assistants WHERE id = $1", assistantColumns)
	var assistant models.Assistant
	if err := r.db.GetContext(ctx, &assistant, query, id); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// Create stores a new assistant profile.
func (r *AssistantRepository) Create(ctx context.Context, assistant *models.Assistant) error {
	if assistant.ID == "" {
		assistant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assistant.CreatedAt.IsZero() {
		assistant.CreatedAt = now
	}
	assistant.UpdatedAt = now

	const query = `INSERT INTO assistants (id, name, department, active, weekly_off, created_at, updated_at) VALUES (:id, :name, :department, :active, :weekly_off, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assistant); err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}
	return nil
}

// Update modifies an assistant profile.
func (r *AssistantRepository) Update(ctx context.Context, assistant *models.Assistant) error {
	assistant.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assistants SET name = :name, department = :department, active = :active, weekly_off = :weekly_off, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assistant); err != nil {
		return fmt.Errorf("update assistant: %w", err)
	}
	return nil
}

// Delete removes an assistant profile.
func (r *AssistantRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assistants WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assistant: %w", err)
	}
	return nil
}

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

// TimeBlockRepository provides database access for manual time blocks.
type TimeBlockRepository struct {
	db *sqlx.DB
}

// NewTimeBlockRepository creates a new time block repository.
func NewTimeBlockRepository(db *sqlx.DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

// ListByDate returns every block scoped to a calendar date.
func (r *TimeBlockRepository) ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error) {
	const query = `SELECT id, assistant_name, date, reason, start_time, end_time, created_at FROM time_blocks WHERE date = $1 ORDER BY start_time ASC`
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	return blocks, nil
}

// Create stores a new time block.
func (r *TimeBlockRepository) Create(ctx context.Context, block *models.TimeBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	block.AssistantName = strings.ToUpper(strings.TrimSpace(block.AssistantName))

	const query = `INSERT INTO time_blocks (id, assistant_name, date, reason, start_time, end_time, created_at) VALUES (:id, :assistant_name, :date, :reason, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create time block: %w", err)
	}
	return nil
}

// Delete removes a time block.
func (r *TimeBlockRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete time block: %w", err)
	}
	return nil
}

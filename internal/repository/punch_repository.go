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

// PunchRepository provides database access for attendance punches.
type PunchRepository struct {
	db *sqlx.DB
}

// NewPunchRepository creates a new punch repository.
func NewPunchRepository(db *sqlx.DB) *PunchRepository {
	return &PunchRepository{db: db}
}

// MapByDate returns the date's punch records indexed by uppercased
// assistant name, the shape the availability evaluator consumes.
func (r *PunchRepository) MapByDate(ctx context.Context, date time.Time) (models.PunchMap, error) {
	const query = `SELECT id, assistant_name, date, punch_in, punch_out, created_at, updated_at FROM punches WHERE date = $1`
	var records []models.PunchRecord
	if err := r.db.SelectContext(ctx, &records, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list punches by date: %w", err)
	}

	punchMap := make(models.PunchMap, len(records))
	for _, rec := range records {
		punchMap[strings.ToUpper(strings.TrimSpace(rec.AssistantName))] = rec
	}
	return punchMap, nil
}

// PunchIn records the punch-in time, creating the row if needed. An
// existing punch-in is preserved; repeated punches are idempotent.
func (r *PunchRepository) PunchIn(ctx context.Context, assistantName string, date, at time.Time) error {
	const query = `INSERT INTO punches (id, assistant_name, date, punch_in, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5) ON CONFLICT (assistant_name, date) DO UPDATE SET punch_in = COALESCE(punches.punch_in, EXCLUDED.punch_in), updated_at = EXCLUDED.updated_at`
	name := strings.ToUpper(strings.TrimSpace(assistantName))
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), name, date.Format("2006-01-02"), at, time.Now().UTC()); err != nil {
		return fmt.Errorf("punch in: %w", err)
	}
	return nil
}

// PunchOut records the punch-out time for an existing punch row.
func (r *PunchRepository) PunchOut(ctx context.Context, assistantName string, date, at time.Time) error {
	const query = `UPDATE punches SET punch_out = $3, updated_at = $4 WHERE assistant_name = $1 AND date = $2`
	name := strings.ToUpper(strings.TrimSpace(assistantName))
	res, err := r.db.ExecContext(ctx, query, name, date.Format("2006-01-02"), at, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("punch out: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("punch out rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("punch out without punch in for %s", name)
	}
	return nil
}

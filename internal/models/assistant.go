package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Assistant represents a staff member eligible for appointment roles.
type Assistant struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Department string         `db:"department" json:"department"`
	Active     bool           `db:"active" json:"active"`
	WeeklyOff  types.JSONText `db:"weekly_off" json:"weekly_off"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// WeeklyOffDays decodes the weekly-off column into weekday indices
// (0=Monday..6=Sunday). Malformed payloads yield an empty set.
func (a Assistant) WeeklyOffDays() []int {
	if len(a.WeeklyOff) == 0 {
		return nil
	}
	var days []int
	_ = json.Unmarshal(a.WeeklyOff, &days)
	return days
}

// AssistantFilter captures filtering options for listing assistants.
type AssistantFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

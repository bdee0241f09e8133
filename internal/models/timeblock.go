package models

import "time"

// TimeBlock is an ad hoc exclusion window for one assistant on one date.
type TimeBlock struct {
	ID            string    `db:"id" json:"id"`
	AssistantName string    `db:"assistant_name" json:"assistant_name"`
	Date          time.Time `db:"date" json:"date"`
	Reason        string    `db:"reason" json:"reason"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

package models

import "time"

// PunchRecord holds the attendance punches for one assistant on one date.
// Either punch may be absent: no punch-in means the assistant never became
// available, a punch-out ends availability for the rest of the day.
type PunchRecord struct {
	ID            string     `db:"id" json:"id"`
	AssistantName string     `db:"assistant_name" json:"assistant_name"`
	Date          time.Time  `db:"date" json:"date"`
	PunchIn       *time.Time `db:"punch_in" json:"punch_in,omitempty"`
	PunchOut      *time.Time `db:"punch_out" json:"punch_out,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PunchMap indexes today's punch records by uppercased assistant name.
type PunchMap map[string]PunchRecord

// PunchSummary is the attendance board row for one assistant.
type PunchSummary struct {
	AssistantName string     `json:"assistant_name"`
	Date          time.Time  `json:"date"`
	PunchIn       *time.Time `json:"punch_in,omitempty"`
	PunchOut      *time.Time `json:"punch_out,omitempty"`
	WeeklyOff     bool       `json:"weekly_off"`
}

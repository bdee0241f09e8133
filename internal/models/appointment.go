package models

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusWaiting   AppointmentStatus = "WAITING"
	StatusArriving  AppointmentStatus = "ARRIVING"
	StatusArrived   AppointmentStatus = "ARRIVED"
	StatusOngoing   AppointmentStatus = "ONGOING"
	StatusDone      AppointmentStatus = "DONE"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusShifted   AppointmentStatus = "SHIFTED"
	StatusLate      AppointmentStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusWaiting, StatusArriving, StatusArrived, StatusOngoing,
		StatusDone, StatusCompleted, StatusCancelled, StatusShifted, StatusLate:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status excludes the appointment from
// availability conflicts and load accounting. A terminal slot can never
// make an assistant busy.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusDone, StatusCompleted, StatusCancelled, StatusShifted:
		return true
	default:
		return false
	}
}

// Appointment represents one scheduled patient visit. Start and end times
// are stored as raw clock text exactly as they arrive from the schedule
// source; unparseable values are tolerated and handled downstream.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	Date            time.Time         `db:"date" json:"date"`
	PatientName     string            `db:"patient_name" json:"patient_name"`
	DoctorName      string            `db:"doctor_name" json:"doctor_name"`
	OPRoom          string            `db:"op_room" json:"op_room"`
	StartTime       string            `db:"start_time" json:"start_time"`
	EndTime         string            `db:"end_time" json:"end_time"`
	Procedure       string            `db:"procedure" json:"procedure"`
	FirstAssistant  string            `db:"first_assistant" json:"first_assistant"`
	SecondAssistant string            `db:"second_assistant" json:"second_assistant"`
	ThirdAssistant  string            `db:"third_assistant" json:"third_assistant"`
	Status          AppointmentStatus `db:"status" json:"status"`
	StatusChangedAt *time.Time        `db:"status_changed_at" json:"status_changed_at,omitempty"`
	ArrivedAt       *time.Time        `db:"arrived_at" json:"arrived_at,omitempty"`
	StartedAt       *time.Time        `db:"started_at" json:"started_at,omitempty"`
	FinishedAt      *time.Time        `db:"finished_at" json:"finished_at,omitempty"`
	SaveVersion     int64             `db:"save_version" json:"save_version"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Assistants returns the three role columns in role order.
func (a Appointment) Assistants() [3]string {
	return [3]string{a.FirstAssistant, a.SecondAssistant, a.ThirdAssistant}
}

// FullyAssigned reports whether all three role columns hold a value.
func (a Appointment) FullyAssigned() bool {
	return a.FirstAssistant != "" && a.SecondAssistant != "" && a.ThirdAssistant != ""
}

// AppointmentFilter captures query options for listing appointments.
type AppointmentFilter struct {
	Date       *time.Time
	DoctorName string
	Status     *AppointmentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

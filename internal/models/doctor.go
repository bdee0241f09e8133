package models

import "time"

// Doctor represents a practitioner record. The engine only consults it to
// resolve a doctor's department.
type Doctor struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Department     string    `db:"department" json:"department"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	RegistrationNo *string   `db:"registration_no" json:"registration_no,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorFilter captures filtering options for listing doctors.
type DoctorFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

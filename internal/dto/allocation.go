package dto

import "github.com/smilekraft/clinic-ops-api/internal/models"

// AllocateSlotRequest asks the engine to fill roles on one appointment.
type AllocateSlotRequest struct {
	AppointmentID string `json:"appointmentId" validate:"required"`
	OnlyFillEmpty bool   `json:"onlyFillEmpty"`
}

// AllocateSlotResponse returns the per-role outcome for one appointment.
type AllocateSlotResponse struct {
	AppointmentID string            `json:"appointmentId"`
	Assignment    models.Assignment `json:"assignment"`
}

// AllocateDayRequest runs batch allocation over a date's schedule.
type AllocateDayRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	OnlyFillEmpty bool   `json:"onlyFillEmpty"`
}

// AllocateDayResponse reports the rewritten schedule and how many
// individual role assignments changed.
type AllocateDayResponse struct {
	Date         string               `json:"date"`
	Changed      int                  `json:"changed"`
	Appointments []models.Appointment `json:"appointments"`
}

// AvailabilityQuery probes whether an assistant is free for a window.
type AvailabilityQuery struct {
	AssistantName string `form:"assistant" json:"assistant" validate:"required"`
	Date          string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string `form:"start" json:"start" validate:"required"`
	EndTime       string `form:"end" json:"end" validate:"required"`
	ExcludeSlotID string `form:"excludeSlotId" json:"excludeSlotId"`
}

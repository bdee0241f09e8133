package dto

// CreateAppointmentRequest registers a new slot on the day schedule.
type CreateAppointmentRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	PatientName string `json:"patientName" validate:"required"`
	DoctorName  string `json:"doctorName" validate:"required"`
	OPRoom      string `json:"opRoom"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Procedure   string `json:"procedure"`
}

// UpdateAppointmentRequest modifies an existing slot. SaveVersion must
// match the stored row or the write is rejected with a version conflict.
type UpdateAppointmentRequest struct {
	PatientName     *string `json:"patientName"`
	DoctorName      *string `json:"doctorName"`
	OPRoom          *string `json:"opRoom"`
	StartTime       *string `json:"startTime"`
	EndTime         *string `json:"endTime"`
	Procedure       *string `json:"procedure"`
	FirstAssistant  *string `json:"firstAssistant"`
	SecondAssistant *string `json:"secondAssistant"`
	ThirdAssistant  *string `json:"thirdAssistant"`
	SaveVersion     int64   `json:"saveVersion" validate:"required,min=1"`
}

// UpdateStatusRequest transitions an appointment's lifecycle status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

package dto

// CreateAssistantRequest registers a new assistant profile.
type CreateAssistantRequest struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	Active     *bool  `json:"active"`
	WeeklyOff  []int  `json:"weeklyOff" validate:"omitempty,dive,min=0,max=6"`
}

// UpdateAssistantRequest modifies an assistant profile.
type UpdateAssistantRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Active     *bool   `json:"active"`
	WeeklyOff  *[]int  `json:"weeklyOff"`
}

// CreateDoctorRequest registers a new doctor profile.
type CreateDoctorRequest struct {
	Name           string  `json:"name" validate:"required"`
	Department     string  `json:"department"`
	Specialization *string `json:"specialization"`
	RegistrationNo *string `json:"registrationNo"`
	Active         *bool   `json:"active"`
}

// UpdateDoctorRequest modifies a doctor profile.
type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Department     *string `json:"department"`
	Specialization *string `json:"specialization"`
	RegistrationNo *string `json:"registrationNo"`
	Active         *bool   `json:"active"`
}

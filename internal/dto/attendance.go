package dto

// PunchRequest records a punch-in or punch-out for an assistant.
type PunchRequest struct {
	AssistantName string `json:"assistantName" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time"`
}

// CreateTimeBlockRequest blocks an assistant for part of one date.
type CreateTimeBlockRequest struct {
	AssistantName string `json:"assistantName" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason        string `json:"reason" validate:"required"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
}

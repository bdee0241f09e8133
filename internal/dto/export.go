package dto

import "time"

// ExportRequest queues a day-roster export.
type ExportRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobStatus reports the lifecycle of a queued export.
type ExportJobStatus struct {
	JobID       string     `json:"jobId"`
	Date        string     `json:"date"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	FilePath    string     `json:"filePath,omitempty"`
	Download    string     `json:"downloadToken,omitempty"`
	DownloadExp *time.Time `json:"downloadExpiresAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

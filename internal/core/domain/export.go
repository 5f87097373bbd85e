// internal/core/domain/export.go
package domain

import "time"

// ExportFormat is the file format of an export snapshot
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

func (f ExportFormat) IsValid() bool {
	return f == ExportFormatCSV || f == ExportFormatXLSX
}

// ExportStatus tracks an export snapshot job
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportRequest describes a snapshot to produce
type ExportRequest struct {
	JobID  string       `json:"job_id"`
	Format ExportFormat `json:"format"`
	Limit  int64        `json:"limit"`
}

// ExportObject is one uploaded file of a snapshot
type ExportObject struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size"`
}

// ExportJob is the status record of a snapshot
type ExportJob struct {
	ID          string         `json:"job_id"`
	Status      ExportStatus   `json:"status"`
	Format      ExportFormat   `json:"format"`
	Limit       int64          `json:"limit"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Objects     []ExportObject `json:"objects,omitempty"`
	Error       string         `json:"error,omitempty"`
}

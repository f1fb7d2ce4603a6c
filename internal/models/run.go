package models

import "time"

const (
	RunCompleted = "completed"
	RunTimeout   = "timeout"
	RunCancelled = "cancelled"
	RunFailed    = "failed"
)

// RunLog represents one journaled reporter run
type RunLog struct {
	Timestamp   time.Time `json:"ts"`
	RequestID   string    `json:"request_id"`
	Projection  string    `json:"projection"`
	OutputPath  string    `json:"output_path"`
	Status      string    `json:"status"`
	RowsWritten int       `json:"rows_written"`
	Rejections  int       `json:"rejections"`
	DurationMs  float64   `json:"dur_ms"`
	Error       string    `json:"error"`
}

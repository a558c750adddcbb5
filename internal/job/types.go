// Package job tracks asynchronous arrangement generation jobs.
package job

import (
	"context"
	"time"

	"github.com/daiw/music-brain/internal/arrangement"
)

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Progress milestones reported while a generation runs.
const (
	ProgressQueued    = 0.0
	ProgressStarted   = 0.1
	ProgressTemplate  = 0.3
	ProgressGenerated = 0.8
	ProgressRendered  = 0.95
	ProgressComplete  = 1.0
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Status represents the current state of a generation job.
type Status struct {
	ID         string                             `json:"id"`
	Status     string                             `json:"status"`
	Progress   float64                            `json:"progress"`
	Message    string                             `json:"message"`
	Error      string                             `json:"error,omitempty"`
	Request    arrangement.GenerateRequest        `json:"request"`
	Result     *arrangement.GeneratedArrangement  `json:"result,omitempty"`
	StartTime  time.Time                          `json:"start_time"`
	EndTime    *time.Time                         `json:"end_time,omitempty"`
	cancelFunc context.CancelFunc
}

// Response represents one page of jobs.
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}

package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daiw/music-brain/internal/arrangement"
)

// Manager tracks generation jobs. Safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

// NewManager creates a new job manager.
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob registers a new pending job for a generation request and returns
// its status together with the context the worker should run under.
func (m *Manager) CreateJob(req arrangement.GenerateRequest) (*Status, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:         uuid.NewString(),
		Status:     StatusPending,
		Progress:   ProgressQueued,
		Message:    "Job created",
		Request:    req,
		StartTime:  time.Now(),
		cancelFunc: cancel,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job, ctx
}

// GetJob retrieves a job by ID.
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, nil
}

// CancelJob cancels a pending or processing job.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}

	if job.Status != StatusProcessing && job.Status != StatusPending {
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	job.Message = "Job cancelled by user"
	endTime := time.Now()
	job.EndTime = &endTime

	return nil
}

// SetProcessing marks a job as running with a progress milestone.
func (m *Manager) SetProcessing(jobID string, progress float64, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status == StatusCancelled {
		return
	}
	job.Status = StatusProcessing
	job.Progress = progress
	job.Message = message
}

// Complete marks a job as finished with its result.
func (m *Manager) Complete(jobID string, result *arrangement.GeneratedArrangement) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status == StatusCancelled {
		return
	}
	job.Status = StatusCompleted
	job.Progress = ProgressComplete
	job.Message = "Arrangement generated"
	job.Result = result
	endTime := time.Now()
	job.EndTime = &endTime
}

// Fail marks a job as failed.
func (m *Manager) Fail(jobID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status == StatusCancelled {
		return
	}
	job.Status = StatusFailed
	job.Message = "Generation failed"
	job.Error = err.Error()
	endTime := time.Now()
	job.EndTime = &endTime
}

// ListJobs lists jobs with pagination, newest first.
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	totalPages := (len(jobs) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: totalPages,
		}
	}

	end := start + pageSize
	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: totalPages,
	}
}

// CleanupOldJobs removes terminal jobs that ended before the retention
// window. Returns the number of jobs removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.EndTime != nil && job.EndTime.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/daiw/music-brain/internal/arrangement"
	"github.com/daiw/music-brain/internal/job"
)

// generateInBackground runs one arrangement generation for a job.
func (s *Server) generateInBackground(ctx context.Context, jobID string, req arrangement.GenerateRequest) {
	slog.Info("Starting background generation", "jobId", jobID, "genre", req.Genre)

	// Generation is fast, but a stuck job should not hang forever.
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	s.jobManager.SetProcessing(jobID, job.ProgressStarted, "Generating arrangement")

	if ctx.Err() != nil {
		slog.Warn("Job cancelled before generation", "jobId", jobID)
		return
	}

	s.jobManager.SetProcessing(jobID, job.ProgressTemplate, "Resolving template and energy arc")

	result, err := s.generator.Generate(req)
	if err != nil {
		slog.Error("Job failed", "jobId", jobID, "error", err)
		s.jobManager.Fail(jobID, err)
		return
	}

	s.jobManager.SetProcessing(jobID, job.ProgressGenerated, "Arrangement generated")

	if ctx.Err() != nil {
		slog.Warn("Job cancelled after generation", "jobId", jobID)
		return
	}

	s.jobManager.SetProcessing(jobID, job.ProgressRendered, "Finalizing result")
	s.jobManager.Complete(jobID, result)
	slog.Info("Job completed successfully", "jobId", jobID, "totalBars", result.TotalBars)
}

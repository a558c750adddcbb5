package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/daiw/music-brain/internal/arrangement"
	"github.com/daiw/music-brain/internal/job"
)

// generate godoc
// @Summary Start generating an arrangement
// @Description Submits a job that generates a complete arrangement from the supplied intent.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body arrangement.GenerateRequest true "Generation parameters"
// @Success 202 {object} GenerateResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/generate [post]
func (s *Server) generate(c *gin.Context) {
	var req arrangement.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	// Validate the genre up front so a bad request fails synchronously
	// instead of surfacing later as a failed job.
	if req.Genre != "" && len(req.CustomSections) == 0 {
		if _, err := arrangement.GetGenreTemplate(req.Genre); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
	}

	jobStatus, ctx := s.jobManager.CreateJob(req)
	go s.generateInBackground(ctx, jobStatus.ID, req)

	c.JSON(202, gin.H{
		"message": "Generation started",
		"job_id":  jobStatus.ID,
	})
}

// getJobStatus godoc
// @Summary Get job status
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} job.Status
// @Failure 404 {object} ErrorResponse
// @Router /api/jobs/{id} [get]
func (s *Server) getJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	jobStatus, err := s.jobManager.GetJob(jobID)
	if err != nil {
		c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", job.ErrNotFound, jobID)})
		return
	}

	c.JSON(200, jobStatus)
}

// cancelJob godoc
// @Summary Cancel a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/jobs/{id}/cancel [post]
func (s *Server) cancelJob(c *gin.Context) {
	jobID := c.Param("id")

	if err := s.jobManager.CancelJob(jobID); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", job.ErrNotFound, jobID)})
		} else if errors.Is(err, job.ErrInvalidState) {
			c.JSON(400, gin.H{"error": fmt.Sprintf("%v: %s", job.ErrInvalidState, jobID)})
		} else {
			c.JSON(500, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"message": "Job cancelled"})
}

// listJobs godoc
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} job.Response
// @Router /api/jobs [get]
func (s *Server) listJobs(c *gin.Context) {
	page := 1
	pageSize := job.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= job.MaxPageSize {
			pageSize = parsed
		}
	}

	response := s.jobManager.ListJobs(page, pageSize)
	c.JSON(200, response)
}

// listGenres godoc
// @Summary List available genres
// @Tags Utility
// @Produce json
// @Success 200 {object} GenresResponse
// @Router /api/genres [get]
func (s *Server) listGenres(c *gin.Context) {
	c.JSON(200, gin.H{"genres": arrangement.GenreNames()})
}

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Package server exposes the arrangement generator over HTTP.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daiw/music-brain/config"
	"github.com/daiw/music-brain/internal/arrangement"
	"github.com/daiw/music-brain/internal/job"
)

// Server handles HTTP requests for the arrangement generator
type Server struct {
	cfg        *config.Config
	generator  *arrangement.Generator
	jobManager *job.Manager
	router     *gin.Engine
}

// New creates a new HTTP server instance
func New(cfg *config.Config) *Server {
	router := gin.Default()

	server := &Server{
		cfg: cfg,
		generator: &arrangement.Generator{
			DefaultGenre: cfg.Generator.DefaultGenre,
			DefaultKey:   cfg.Generator.DefaultKey,
			DefaultTempo: cfg.Generator.DefaultTempo,
		},
		jobManager: job.NewManager(),
		router:     router,
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", s.health)

	// API endpoints
	api := router.Group("/api")
	{
		api.POST("/generate", s.generate)
		api.GET("/jobs/:id", s.getJobStatus)
		api.POST("/jobs/:id/cancel", s.cancelJob)
		api.GET("/jobs", s.listJobs)
		api.GET("/genres", s.listGenres)
	}
}

// Start starts the HTTP server and a background cleanup worker for old jobs.
func (s *Server) Start(port string) error {
	go s.cleanupWorker(time.Hour, 24*time.Hour)
	slog.Info("Starting server", "port", port)
	return s.router.Run(":" + port)
}

func (s *Server) cleanupWorker(interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if removed := s.jobManager.CleanupOldJobs(maxAge); removed > 0 {
			slog.Info("Cleaned up old jobs", "removed", removed)
		}
	}
}

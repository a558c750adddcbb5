package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daiw/music-brain/config"
	"github.com/daiw/music-brain/internal/arrangement"
	"github.com/daiw/music-brain/internal/job"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Generator: config.GeneratorConfig{
			DefaultGenre: "pop",
			DefaultKey:   "C",
			DefaultTempo: 120,
		},
	}
	return New(cfg)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestGenerateValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name:           "valid request",
			requestBody:    arrangement.GenerateRequest{Title: "Test", Genre: "pop"},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "empty request uses defaults",
			requestBody:    arrangement.GenerateRequest{},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "unknown genre",
			requestBody:    arrangement.GenerateRequest{Genre: "xyz"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown genre with custom sections is fine",
			requestBody: arrangement.GenerateRequest{
				Genre: "xyz",
				CustomSections: []arrangement.SectionSpec{
					{Type: "verse", Bars: 8},
				},
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "invalid json",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			if str, ok := tt.requestBody.(string); ok {
				body.WriteString(str)
			} else {
				jsonData, err := json.Marshal(tt.requestBody)
				require.NoError(t, err)
				body.Write(jsonData)
			}

			req := httptest.NewRequest("POST", "/api/generate", &body)
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			server.router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestGenerateUnknownGenreListsChoices(t *testing.T) {
	server := newTestServer(t)

	body := bytes.NewBufferString(`{"genre":"xyz"}`)
	req := httptest.NewRequest("POST", "/api/generate", body)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown genre")
	assert.Contains(t, rr.Body.String(), "pop")
}

func TestGenerateCompletesJob(t *testing.T) {
	server := newTestServer(t)

	body := bytes.NewBufferString(`{"title":"Async Song","genre":"jazz","mood":"peace"}`)
	req := httptest.NewRequest("POST", "/api/generate", body)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accepted))
	jobID := accepted["job_id"]
	require.NotEmpty(t, jobID)

	// Poll until the worker finishes.
	var status *job.Status
	require.Eventually(t, func() bool {
		var err error
		status, err = server.jobManager.GetJob(jobID)
		return err == nil && status.Status == job.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, status.Result)
	assert.Equal(t, "Async Song", status.Result.Title)
	assert.Equal(t, "jazz", status.Result.Genre)
	assert.Equal(t, 1.0, status.Progress)
}

func TestGetJobStatusNotFound(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/jobs/non-existent-job", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "job not found")
}

func TestCancelJob(t *testing.T) {
	server := newTestServer(t)

	// Cancel a job directly in the manager; the handler only sees IDs.
	status, _ := server.jobManager.CreateJob(arrangement.GenerateRequest{})

	req := httptest.NewRequest("POST", "/api/jobs/"+status.ID+"/cancel", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Cancelling twice is an invalid state transition.
	rr = httptest.NewRecorder()
	server.router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/jobs/"+status.ID+"/cancel", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	server.router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/jobs/missing/cancel", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListJobs(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		server.jobManager.CreateJob(arrangement.GenerateRequest{})
	}

	req := httptest.NewRequest("GET", "/api/jobs?page=1&pageSize=2", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response job.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Len(t, response.Jobs, 2)
	assert.Equal(t, 3, response.TotalJobs)
	assert.Equal(t, 2, response.TotalPages)
}

func TestListGenres(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/genres", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response GenresResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response.Genres, "pop")
	assert.Contains(t, response.Genres, "jazz")
	assert.Len(t, response.Genres, 9)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/generate", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

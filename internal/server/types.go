package server

// GenerateResponse represents the response for an accepted generation job.
type GenerateResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// GenresResponse represents the list of known genres.
type GenresResponse struct {
	Genres []string `json:"genres"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

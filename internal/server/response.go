package server

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of an accepted registration.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

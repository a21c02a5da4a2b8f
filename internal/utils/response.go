// Package utils holds small HTTP helpers for the redirect receiver.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/brizzai/subcount-bot/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is an OAuth2 style error body (RFC 6749 section 5.2)
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes data as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}

// WriteError writes an ErrorResponse
func WriteError(w http.ResponseWriter, code, description string, status int) {
	WriteJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

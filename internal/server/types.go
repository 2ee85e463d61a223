package server

import (
	"encoding/json"
	"net/http"

	"github.com/agbru/fibwindow/pkg/models"
)

// ParseError is a rejected query parameter.
type ParseError struct {
	Param   string
	Message string
}

func (e ParseError) Error() string {
	return "invalid '" + e.Param + "' parameter: " + e.Message
}

func errorBody(status int, code, message, requestID string) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
}

// writeJSON encodes data with the given status. Encoding errors are reported
// to the caller through the returned error.
func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

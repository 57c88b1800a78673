package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/pkg/apperr"
)

// envelope is the uniform response body: data on success, a message on
// failure, never both.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// respond writes a success envelope.
func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondMessage writes a success envelope carrying only a message.
func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError maps err onto its status and client-visible message.
// Untagged errors become an opaque 500 so internals never leak.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	e := apperr.From(err)
	if e.Status >= 500 {
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, e.Status, envelope{Success: false, Message: "Something went wrong"})
		return
	}
	writeJSON(w, e.Status, envelope{Success: false, Message: e.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

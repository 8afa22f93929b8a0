package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Every endpoint answers with the same envelope so callers cannot distinguish
// internal failure causes beyond the HTTP status code.
type responseEnvelope struct {
	OK    bool           `json:"ok"`
	Data  interface{}    `json:"data,omitempty"`
	Error *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, responseEnvelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, responseEnvelope{OK: false, Error: &errorEnvelope{Name: name, Message: message}})
}

// writeInternalError emits the generic failure envelope. Detail stays in the logs.
func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal-server-error", "something-went-wrong")
}

// writeBadRequest emits the generic validation envelope without field detail, so
// the donation form cannot be probed for which constraint tripped.
func writeBadRequest(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "bad-request", "invalid-request")
}

func writeJSON(w http.ResponseWriter, status int, body responseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

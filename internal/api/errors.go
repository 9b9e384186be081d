package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorMessage writes an error body with the given status code.
func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeBadRequest writes a 400 response for malformed input.
func writeBadRequest(w http.ResponseWriter, err error) {
	writeErrorMessage(w, http.StatusBadRequest, err.Error())
}

// writeInternalError writes a 500 response without leaking details.
func writeInternalError(w http.ResponseWriter) {
	writeErrorMessage(w, http.StatusInternalServerError, "internal error")
}

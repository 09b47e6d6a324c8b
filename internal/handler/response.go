package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wavenotes/wavenotes-api/internal/payload"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload.ErrorResponse{Success: false, Message: message})
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{
		Success: false,
		Message: "Validation errors",
		Errors:  fieldErrors,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

package handler

import (
	"encoding/json"
	"net/http"

	"lurdinha/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeAppError maps error codes to HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.Code(err) {
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeAlreadyStarted, apperr.CodeAlreadyExists:
		status = http.StatusConflict
	case apperr.CodeAuthRequired:
		status = http.StatusUnauthorized
	case apperr.CodeForbidden:
		status = http.StatusForbidden
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-organizer/internal/organizer"
	"github.com/mind-engage/mindengage-organizer/internal/question"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var se *organizer.SaveError
	switch {
	case errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, organizer.ErrNoSession), errors.Is(err, question.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, organizer.ErrSessionExists),
		errors.Is(err, organizer.ErrGateBusy),
		errors.Is(err, organizer.ErrNoPendingChange),
		errors.Is(err, organizer.ErrNotOpen),
		errors.Is(err, errDragRefused):
		return http.StatusConflict
	case errors.Is(err, organizer.ErrInvalidCaseID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, organizer.ErrIncompatible), errors.Is(err, organizer.ErrUnknownEntry):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

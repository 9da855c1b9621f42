package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
)

// errInvalidPayload marks a request body that is not a JSON object.
var errInvalidPayload = errors.New("invalid request payload")

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeError maps err onto a status code and response body. Errors with no
// specific mapping become a 500 carrying fallback; their detail is only
// logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	log := logger.Log.WithError(err).WithField("method", r.Method).WithField("path", r.URL.Path)

	switch {
	case errors.Is(err, services.ErrOwnerEmailRequired):
		log.Warn("Owner email missing")
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email query is required"})
	case errors.Is(err, errInvalidPayload):
		log.Warn("Invalid request payload")
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request payload"})
	case errors.Is(err, services.ErrInvalidHabitID):
		log.Warn("Invalid habit ID")
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid habit ID"})
	case errors.Is(err, repository.ErrHabitNotFound):
		log.Warn("Habit not found")
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Habit not found"})
	default:
		log.Error(fallback)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: fallback})
	}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/metrics"
	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/gorilla/mux"
)

// HabitHandler handles HTTP requests related to habits.
type HabitHandler struct {
	Service *services.HabitService
	Metrics *metrics.Metrics
}

// NewHabitHandler creates a new instance of HabitHandler.
func NewHabitHandler(service *services.HabitService, m *metrics.Metrics) *HabitHandler {
	return &HabitHandler{
		Service: service,
		Metrics: m,
	}
}

type insertResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type habitResponse struct {
	Success bool          `json:"success"`
	Result  *models.Habit `json:"result"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type completeResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	UpdatedHabit *models.StreakUpdate `json:"updatedHabit"`
}

func decodeFields(r *http.Request) (models.Fields, error) {
	defer r.Body.Close()

	var fields models.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", errInvalidPayload)
	}
	return fields, nil
}

// RootHandler answers the liveness probe.
func (h *HabitHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Server is running"))
}

// CreateHabitHandler stores the submitted fields as a new habit.
func (h *HabitHandler) CreateHabitHandler(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, r, err, "Failed to add habit")
		return
	}

	id, err := h.Service.CreateHabit(r.Context(), fields)
	if err != nil {
		writeError(w, r, err, "Failed to add habit")
		return
	}

	writeJSON(w, http.StatusOK, insertResponse{Acknowledged: true, InsertedID: id.Hex()})
}

// GetHabitsHandler lists the newest public habits.
func (h *HabitHandler) GetHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Service.ListPublicHabits(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to load habits")
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// GetPublicHabitsHandler lists every public habit.
func (h *HabitHandler) GetPublicHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Service.ListAllPublicHabits(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to load public habits")
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// GetHabitHandler fetches a single habit by its ID.
func (h *HabitHandler) GetHabitHandler(w http.ResponseWriter, r *http.Request) {
	habit, err := h.Service.GetHabit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Failed to load habit")
		return
	}
	writeJSON(w, http.StatusOK, habitResponse{Success: true, Result: habit})
}

// GetMyHabitsHandler lists the habits of the owner given by ?email=.
func (h *HabitHandler) GetMyHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Service.GetHabitsByOwner(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, "Failed to load user habits")
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// UpdateHabitHandler merges the submitted fields into a habit.
func (h *HabitHandler) UpdateHabitHandler(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, r, err, "Failed to update habit")
		return
	}

	changed, err := h.Service.UpdateHabit(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		writeError(w, r, err, "Failed to update habit")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: changed})
}

// DeleteHabitHandler removes a habit.
func (h *HabitHandler) DeleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Service.DeleteHabit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Failed to delete habit")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: deleted})
}

// CompleteHabitHandler marks a habit complete for today.
func (h *HabitHandler) CompleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	update, err := h.Service.CompleteHabit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Failed to mark complete")
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordCompletion()
	}

	writeJSON(w, http.StatusOK, completeResponse{
		Success:      true,
		Message:      "Marked complete and streak updated",
		UpdatedHabit: update,
	})
}

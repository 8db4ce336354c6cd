package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nicozh/lesson-scheduler/internal/middleware"
	"github.com/nicozh/lesson-scheduler/internal/services"
	"github.com/nicozh/lesson-scheduler/internal/services/scheduling"
)

// ScheduleHandler exposes the lesson-assignment engine over the
// teacher-account bearer-JWT API surface.
type ScheduleHandler struct {
	handlers  *Handlers
	validator *validator.Validate
}

func newScheduleHandler(h *Handlers) *ScheduleHandler {
	return &ScheduleHandler{handlers: h, validator: validator.New()}
}

// generateRequest is the POST /api/schedules/{id}/generate body.
type generateRequest struct {
	SlotMinutes   int  `json:"slot_minutes" validate:"omitempty,min=1"`
	BufferMinutes *int `json:"buffer_minutes" validate:"omitempty,min=0"`
	DayOpenCost   int  `json:"day_open_cost" validate:"omitempty,min=0"`
	GapPenalty    *int `json:"gap_penalty" validate:"omitempty,min=0"`
}

type generateResponse struct {
	Lessons               []scheduling.Lesson `json:"lessons"`
	UnscheduledStudentIDs []string            `json:"unscheduled_student_ids"`
	ScheduledCount        int                 `json:"scheduled_count"`
	ObjectiveCost         int                 `json:"objective_cost"`
}

// Generate handles POST /api/schedules/{id}/generate.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	scheduleID := r.PathValue("id")
	teacherID := middleware.GetTeacherID(r.Context())

	var req generateRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.handlers.services.Schedule.Generate(r.Context(), scheduleID, teacherID, services.GenerateOverrides{
		SlotMinutes:   req.SlotMinutes,
		BufferMinutes: req.BufferMinutes,
		DayOpenCost:   req.DayOpenCost,
		GapPenalty:    req.GapPenalty,
	})
	if h.handleEngineError(w, err) {
		return
	}

	h.writeJSON(w, http.StatusOK, generateResponse{
		Lessons:               result.Lessons,
		UnscheduledStudentIDs: result.UnscheduledStudentIDs,
		ScheduledCount:        result.ScheduledCount,
		ObjectiveCost:         result.ObjectiveCost,
	})
}

type finalizeRequest struct {
	Lessons []scheduling.Lesson `json:"lessons" validate:"required,dive"`
}

// Finalize handles POST /api/schedules/{id}/finalize. It persists the
// lessons in the request body (normally the output of a prior Generate
// call) as the schedule's accepted assignment.
func (h *ScheduleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	scheduleID := r.PathValue("id")
	teacherID := middleware.GetTeacherID(r.Context())

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := &scheduling.GenerateScheduleResult{Lessons: req.Lessons}
	err := h.handlers.services.Schedule.Finalize(r.Context(), scheduleID, teacherID, result)
	if h.handleEngineError(w, err) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Finalized handles GET /api/schedules/{id}/finalized.
func (h *ScheduleHandler) Finalized(w http.ResponseWriter, r *http.Request) {
	scheduleID := r.PathValue("id")
	teacherID := middleware.GetTeacherID(r.Context())

	lessons, err := h.handlers.services.Schedule.GetFinalized(r.Context(), scheduleID, teacherID)
	if h.handleEngineError(w, err) {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

func (h *ScheduleHandler) handleEngineError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, services.ErrScheduleNotFound):
		h.writeError(w, http.StatusNotFound, "schedule not found")
	case errors.Is(err, services.ErrNotAuthorized):
		h.writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, scheduling.ErrInvalidBuffer),
		errors.Is(err, scheduling.ErrAmbiguousSlotLength),
		errors.Is(err, scheduling.ErrInvalidSlotGranularity),
		errors.Is(err, scheduling.ErrDayOpenCostTooLow):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}

func (h *ScheduleHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *ScheduleHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RunRequest is the body for POST /api/v1/workouts/run.
type RunRequest struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           string  `json:"notes,omitempty"`
}

// LiftRequest is the body for POST /api/v1/workouts/lift.
type LiftRequest struct {
	Exercises       []models.Exercise `json:"exercises"`
	DurationMinutes int               `json:"duration_minutes"`
	Notes           string            `json:"notes,omitempty"`
}

// ProgramRequest is the body for POST /api/v1/programs/active. An empty or
// null program_id ends the active program.
type ProgramRequest struct {
	ProgramID string `json:"program_id"`
}

func (s *Server) handleLogRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	res, err := s.store.AddRunWorkout(r.Context(), req.DistanceKm, req.DurationMinutes, req.Notes)
	s.writeLogResult(w, res, err)
}

func (s *Server) handleLogLift(w http.ResponseWriter, r *http.Request) {
	var req LiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	res, err := s.store.AddLiftWorkout(r.Context(), req.Exercises, req.DurationMinutes, req.Notes)
	s.writeLogResult(w, res, err)
}

// writeLogResult maps the tracker's error taxonomy to HTTP. A persistence
// failure still created the workout in memory, so the client gets the
// record alongside the error.
func (s *Server) writeLogResult(w http.ResponseWriter, res *tracker.LogResult, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errors.Is(err, tracker.ErrInvalidWorkout):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrPersistence):
		s.log.Error("workout logged but not persisted", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"result": res,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Profile())
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Workouts())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	workout, ok := s.store.WorkoutByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"earned":  s.store.EarnedBadges(),
		"catalog": s.store.BadgeCatalog(),
	})
}

func (s *Server) handlePrograms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Programs())
}

func (s *Server) handleProgramProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ActiveProgram())
}

func (s *Server) handleSetActiveProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err := s.store.SetActiveProgram(r.Context(), req.ProgramID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.store.ActiveProgram())
	case errors.Is(err, tracker.ErrUnknownProgram):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleAdvanceProgram(w http.ResponseWriter, r *http.Request) {
	next, err := s.store.AdvanceProgramProgress(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"progress":  next,
			"completed": next == nil,
		})
	case errors.Is(err, tracker.ErrNoActiveProgram):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearData(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.store.Profile())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

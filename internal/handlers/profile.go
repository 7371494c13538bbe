package handlers

import (
	"net/http"

	"coach-backend/internal/middleware"
	"coach-backend/internal/models"
	"coach-backend/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	coach    *services.CoachService
}

func NewProfileHandler(profiles *services.ProfileService, coach *services.CoachService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, coach: coach}
}

// Get returns the profile, or null when onboarding never ran.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.profiles.Save(r.Context(), middleware.GetUserID(r.Context()), &p); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Questions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": services.OnboardingQuestions(),
	})
}

func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req models.OnboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	reply, err := h.coach.CompleteOnboarding(r.Context(), middleware.GetUserID(r.Context()), req.Answers)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

package handlers

import (
	"net/http"

	"coach-backend/internal/models"
	"coach-backend/internal/services"
)

// ChatHandler serves the stateless completion relay used by web clients that
// keep the transcript themselves.
type ChatHandler struct {
	coach *services.CoachService
}

func NewChatHandler(coach *services.CoachService) *ChatHandler {
	return &ChatHandler{coach: coach}
}

func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.coach.Relay(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

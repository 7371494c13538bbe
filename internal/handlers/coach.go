package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coach-backend/internal/middleware"
	"coach-backend/internal/models"
	"coach-backend/internal/services"
)

type jobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CoachHandler serves the stored conversation and coach turns. Turns run inline
// unless ?async=true is given and a queue is configured.
type CoachHandler struct {
	coach   *services.CoachService
	jobRepo jobRepository
	redis   *redis.Client
}

func NewCoachHandler(coach *services.CoachService, jobRepo jobRepository, redisClient *redis.Client) *CoachHandler {
	return &CoachHandler{coach: coach, jobRepo: jobRepo, redis: redisClient}
}

func (h *CoachHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CoachMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if r.URL.Query().Get("async") == "true" && h.redis != nil && h.jobRepo != nil {
		h.enqueue(w, r, userID, req)
		return
	}

	reply, err := h.coach.Reply(r.Context(), userID, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *CoachHandler) enqueue(w http.ResponseWriter, r *http.Request, userID uuid.UUID, req models.CoachMessageRequest) {
	configBytes, _ := json.Marshal(models.CoachJobConfig{Message: req.Message})
	job := &models.Job{
		UserID:     userID,
		Type:       models.JobTypeCoachReply,
		ConfigJSON: configBytes,
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), models.QueueCoachReply, string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue coach-reply job %s: %v", job.ID, err)
		_ = h.jobRepo.UpdateStatus(r.Context(), job.ID, "failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue coach job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

func (h *CoachHandler) Reset(w http.ResponseWriter, r *http.Request) {
	conv, err := h.coach.NewConversation(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *CoachHandler) Render(w http.ResponseWriter, r *http.Request) {
	var index *int
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid message index", r))
			return
		}
		index = &n
	}

	view, err := h.coach.Render(r.Context(), middleware.GetUserID(r.Context()), index)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CoachHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.coach.Conversation(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *CoachHandler) PutConversation(w http.ResponseWriter, r *http.Request) {
	var conv models.Conversation
	if err := decodeJSON(r, &conv); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	saved, err := h.coach.PutConversation(r.Context(), middleware.GetUserID(r.Context()), &conv)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

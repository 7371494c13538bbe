package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coach-backend/internal/export"
	"coach-backend/internal/middleware"
	"coach-backend/internal/models"
	"coach-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProgramHandler struct {
	programs *services.ProgramService
	loc      *time.Location
}

func NewProgramHandler(programs *services.ProgramService, loc *time.Location) *ProgramHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgramHandler{programs: programs, loc: loc}
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.programs.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p models.Program
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	saved, err := h.programs.Put(r.Context(), middleware.GetUserID(r.Context()), &p)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Commit adds every pending draft, or only body.draft_id when given.
func (h *ProgramHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req models.CommitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	p, err := h.programs.Commit(r.Context(), middleware.GetUserID(r.Context()), req.DraftID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	p, err := h.programs.MarkDone(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Feedback)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Reset(w http.ResponseWriter, r *http.Request) {
	p, err := h.programs.Reset(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.programs.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.programs.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ProgramHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, err := h.programs.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteProgram(&buf, p.Sessions, time.Now().In(h.loc)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build workbook", r))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="programme.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

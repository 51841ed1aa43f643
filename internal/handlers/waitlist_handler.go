package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

type WaitlistHandler struct {
	waitlist services.WaitlistService
}

func NewWaitlistHandler(waitlist services.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("email is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.waitlist.Join(ctx, &req)
	if err != nil {
		log.Printf("[JoinWaitlist] email=%s error=%v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to join waitlist"))
		return
	}
	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	writeJSON(w, status, models.NewSuccessResponse(result))
}

func (h *WaitlistHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("email is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	exists, err := h.waitlist.CheckEmail(ctx, email)
	if err != nil {
		log.Printf("[CheckEmail] email=%s error=%v", email, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to check email"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]bool{"exists": exists}))
}

// GetAll lists every signup, newest first (admin).
func (h *WaitlistHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entries, err := h.waitlist.GetAll(ctx)
	if err != nil {
		log.Printf("[GetWaitlist] error=%v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load waitlist"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(entries))
}

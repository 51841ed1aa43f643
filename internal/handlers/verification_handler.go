package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

type VerificationHandler struct {
	verification services.VerificationService
}

func NewVerificationHandler(verification services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

func (h *VerificationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.Phone == "" || req.ProfileID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("phone and profile_id are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.verification.CreateSession(ctx, req.Phone, req.ProfileID)
	if err != nil {
		log.Printf("[CreateSession] profile=%s error=%v", req.ProfileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create session"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(result))
}

func (h *VerificationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sess, err := h.verification.GetStatus(ctx, profileID)
	if err != nil {
		log.Printf("[GetStatus] profile=%s error=%v", profileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load session"))
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("No verification session"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(sess))
}

// VerifyPin is always a 200 when the attempt was processed; the outcome and
// failure code are in the body, since callers branch on the code.
func (h *VerificationHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.ProfileID == "" || req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("profile_id and pin are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.verification.VerifyPin(ctx, req.ProfileID, req.Pin)
	if err != nil {
		log.Printf("[VerifyPin] profile=%s error=%v", req.ProfileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to verify PIN"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

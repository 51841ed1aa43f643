package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

type ShareHandler struct {
	shares services.ShareService
}

func NewShareHandler(shares services.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

func (h *ShareHandler) LogShare(w http.ResponseWriter, r *http.Request) {
	var req models.LogShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.SharerProfileID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("sharer_profile_id is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.shares.LogShare(ctx, &req)
	if err != nil {
		log.Printf("[LogShare] sharer=%s error=%v", req.SharerProfileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to log share"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(map[string]string{"id": id}))
}

func (h *ShareHandler) MarkRecipientJoined(w http.ResponseWriter, r *http.Request) {
	h.markFlag(w, r, h.shares.MarkRecipientJoined, "MarkRecipientJoined")
}

func (h *ShareHandler) MarkConnectBack(w http.ResponseWriter, r *http.Request) {
	h.markFlag(w, r, h.shares.MarkConnectBack, "MarkConnectBack")
}

func (h *ShareHandler) markFlag(w http.ResponseWriter, r *http.Request, mark func(context.Context, string) error, op string) {
	shareID := chi.URLParam(r, "shareId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := mark(ctx, shareID); err != nil {
		if errors.Is(err, services.ErrShareNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Share event not found"))
			return
		}
		log.Printf("[%s] id=%s error=%v", op, shareID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update share"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(nil))
}

// GetBySharer returns a profile's tap history, newest first.
func (h *ShareHandler) GetBySharer(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := h.shares.GetBySharer(ctx, profileID)
	if err != nil {
		log.Printf("[GetBySharer] sharer=%s error=%v", profileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load shares"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(events))
}

// GetRecent returns the global share feed (admin).
func (h *ShareHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid limit"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := h.shares.GetRecent(ctx, limit)
	if err != nil {
		log.Printf("[GetRecent] error=%v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load shares"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(events))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetBySlug serves the public profile page lookup.
func (h *ProfileHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.GetBySlug(ctx, slug)
	if err != nil {
		log.Printf("[GetBySlug] slug=%s error=%v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	if prof == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.GetByID(ctx, id)
	if err != nil {
		log.Printf("[GetProfile] id=%s error=%v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	if prof == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// GetByAuthID serves the login lookup for the external auth provider.
func (h *ProfileHandler) GetByAuthID(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.GetByAuthID(ctx, authID)
	if err != nil {
		log.Printf("[GetByAuthID] authId=%s error=%v", authID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	if prof == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// GetByNfcTag resolves a tap to the profile bound to the tag.
func (h *ProfileHandler) GetByNfcTag(w http.ResponseWriter, r *http.Request) {
	tagID := chi.URLParam(r, "tagId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.GetByNfcTag(ctx, tagID)
	if err != nil {
		log.Printf("[GetByNfcTag] tag=%s error=%v", tagID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	if prof == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = "name is required"
	}
	if req.Slug == "" {
		fieldErrors["slug"] = "slug is required"
	}
	if req.Tier == "" {
		fieldErrors["tier"] = "tier is required"
	}
	if req.MemberID == "" {
		fieldErrors["member_id"] = "member_id is required"
	}
	if req.PrivacyMode == "" {
		fieldErrors["privacy_mode"] = "privacy_mode is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(fieldErrors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.Create(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrSlugTaken) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse(err.Error()))
			return
		}
		log.Printf("[CreateProfile] slug=%s error=%v", req.Slug, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create profile"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileId")

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.profiles.Update(ctx, id, &req); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[UpdateProfile] id=%s error=%v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(nil))
}

func (h *ProfileHandler) BindNfcTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileId")

	var req struct {
		NfcTagID string `json:"nfc_tag_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NfcTagID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("nfc_tag_id is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.profiles.BindNfcTag(ctx, id, req.NfcTagID); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[BindNfcTag] id=%s tag=%s error=%v", id, req.NfcTagID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to bind tag"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(nil))
}

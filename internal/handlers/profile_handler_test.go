package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

func newProfileRouter(t *testing.T) (*chi.Mux, *services.MemoryProfileService) {
	t.Helper()
	svc := services.NewMemoryProfileService()
	h := NewProfileHandler(svc)

	r := chi.NewRouter()
	r.Get("/profiles/slug/{slug}", h.GetBySlug)
	r.Post("/profiles", h.Create)
	r.Patch("/profiles/{profileId}", h.Update)
	r.Post("/profiles/{profileId}/tag", h.BindNfcTag)
	return r, svc
}

func TestProfileHandler_CreateAndLookup(t *testing.T) {
	r, _ := newProfileRouter(t)

	w := postJSON(t, r, "/profiles", models.CreateProfileRequest{
		Name:        "Jane Doe",
		Slug:        "jane",
		Tier:        models.TierFounding,
		MemberID:    "STL-000001",
		PrivacyMode: models.PrivacyPublic,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/profiles/slug/jane", nil)
	gw := httptest.NewRecorder()
	r.ServeHTTP(gw, req)
	if gw.Code != http.StatusOK {
		t.Fatalf("GetBySlug status = %d, want 200", gw.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/profiles/slug/nobody", nil)
	gw = httptest.NewRecorder()
	r.ServeHTTP(gw, req)
	if gw.Code != http.StatusNotFound {
		t.Errorf("GetBySlug(missing) status = %d, want 404", gw.Code)
	}
}

func TestProfileHandler_DuplicateSlugConflict(t *testing.T) {
	r, _ := newProfileRouter(t)

	body := models.CreateProfileRequest{
		Name:        "Jane Doe",
		Slug:        "jane",
		Tier:        models.TierFounding,
		MemberID:    "STL-000001",
		PrivacyMode: models.PrivacyPublic,
	}
	if w := postJSON(t, r, "/profiles", body); w.Code != http.StatusCreated {
		t.Fatalf("first Create status = %d, want 201", w.Code)
	}

	w := postJSON(t, r, "/profiles", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("second Create status = %d, want 409", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success || resp.Error == "" {
		t.Errorf("conflict response = %+v, want a descriptive error", resp)
	}
}

func TestProfileHandler_ValidationErrors(t *testing.T) {
	r, _ := newProfileRouter(t)

	w := postJSON(t, r, "/profiles", models.CreateProfileRequest{Name: "No Slug"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Create without slug status = %d, want 400", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success || resp.Errors == nil {
		t.Errorf("validation response = %+v, want field errors", resp)
	}
}

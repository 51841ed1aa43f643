package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/steel/backend/internal/models"
	"github.com/steel/backend/internal/services"
)

func newVerificationRouter(t *testing.T) (*chi.Mux, *services.MemoryVerificationService) {
	t.Helper()
	svc := services.NewMemoryVerificationService(nil)
	h := NewVerificationHandler(svc)

	r := chi.NewRouter()
	r.Post("/verification/session", h.CreateSession)
	r.Post("/verification/verify", h.VerifyPin)
	r.Get("/verification/status/{profileId}", h.GetStatus)
	return r, svc
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestVerificationHandler_CreateAndStatus(t *testing.T) {
	r, _ := newVerificationRouter(t)

	w := postJSON(t, r, "/verification/session", models.CreateSessionRequest{
		Phone:     "+15551234567",
		ProfileID: "profile-1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateSession status = %d, want 201", w.Code)
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatalf("CreateSession response = %+v, want success", resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/verification/status/profile-1", nil)
	sw := httptest.NewRecorder()
	r.ServeHTTP(sw, req)
	if sw.Code != http.StatusOK {
		t.Fatalf("GetStatus status = %d, want 200", sw.Code)
	}

	// Unknown profile has no session.
	req = httptest.NewRequest(http.MethodGet, "/verification/status/nobody", nil)
	sw = httptest.NewRecorder()
	r.ServeHTTP(sw, req)
	if sw.Code != http.StatusNotFound {
		t.Errorf("GetStatus(unknown) status = %d, want 404", sw.Code)
	}
}

func TestVerificationHandler_VerifyPinCodes(t *testing.T) {
	r, _ := newVerificationRouter(t)

	// Failure codes ride in the body on a 200, not in the HTTP status.
	w := postJSON(t, r, "/verification/verify", models.VerifyPinRequest{
		ProfileID: "profile-1",
		Pin:       "0000",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("VerifyPin status = %d, want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	var result models.VerifyResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to decode verify result: %v", err)
	}
	if result.Success || result.ErrorCode != models.VerifyErrNoSession {
		t.Errorf("result = %+v, want no_session", result)
	}
}

func TestVerificationHandler_BadRequest(t *testing.T) {
	r, _ := newVerificationRouter(t)

	w := postJSON(t, r, "/verification/session", models.CreateSessionRequest{Phone: "+15551234567"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("CreateSession without profile_id status = %d, want 400", w.Code)
	}

	w = postJSON(t, r, "/verification/verify", models.VerifyPinRequest{ProfileID: "p"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("VerifyPin without pin status = %d, want 400", w.Code)
	}
}

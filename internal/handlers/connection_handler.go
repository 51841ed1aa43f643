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

type ConnectionHandler struct {
	connections services.ConnectionService
}

func NewConnectionHandler(connections services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

func (h *ConnectionHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("from and to are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.connections.Request(ctx, req.From, req.To)
	if err != nil {
		log.Printf("[RequestConnection] from=%s to=%s error=%v", req.From, req.To, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to request connection"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"id": id}))
}

func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.connections.Accept, "AcceptConnection")
}

func (h *ConnectionHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.connections.Block, "BlockConnection")
}

func (h *ConnectionHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) error, op string) {
	connectionID := chi.URLParam(r, "connectionId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := apply(ctx, connectionID); err != nil {
		if errors.Is(err, services.ErrConnectionNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Connection not found"))
			return
		}
		log.Printf("[%s] id=%s error=%v", op, connectionID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update connection"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(nil))
}

func (h *ConnectionHandler) GetForProfile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	conns, err := h.connections.GetForProfile(ctx, profileID)
	if err != nil {
		log.Printf("[GetConnections] profile=%s error=%v", profileID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load connections"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(conns))
}

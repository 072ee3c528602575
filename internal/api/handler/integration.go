package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Void-Roleplay/backend/internal/api/request"
	"github.com/Void-Roleplay/backend/internal/api/response"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/services/linking"
)

// IntegrationHandler handles the platform integration endpoints used by the
// in-game plugin and the per-platform bot gateways
type IntegrationHandler struct {
	linkingService *linking.Service
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(linkingService *linking.Service) *IntegrationHandler {
	return &IntegrationHandler{
		linkingService: linkingService,
	}
}

// platformFromRequest extracts and validates the {platform} path variable
func platformFromRequest(r *http.Request) (model.Platform, error) {
	p := model.Platform(mux.Vars(r)["platform"])
	if !p.Valid() {
		return "", model.ErrUnknownPlatform
	}
	return p, nil
}

// Link handles POST /api/v1/integration/{platform}/link
func (h *IntegrationHandler) Link(w http.ResponseWriter, r *http.Request) {
	p, err := platformFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Handle == "" {
		WriteError(w, NewInvalidRequestError("handle is required"))
		return
	}

	playerID := model.PlayerID(req.UUID)
	if err := playerID.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.linkingService.RequestLink(r.Context(), playerID, model.Handle(req.Handle), p); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.StatusPending)
}

// Signal handles POST /api/v1/integration/{platform}/signal
//
// Signals for unknown or already-resolved verifications are absorbed, so this
// endpoint answers 200 whether or not the signal found a pending entry. The
// gateways fire and forget.
func (h *IntegrationHandler) Signal(w http.ResponseWriter, r *http.Request) {
	p, err := platformFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Handle == "" {
		WriteError(w, NewInvalidRequestError("handle is required"))
		return
	}

	h.linkingService.OnConfirmationSignal(r.Context(), p, model.Handle(req.Handle), req.Accepted)

	response.JSON(w, http.StatusOK, response.StatusOK)
}

// Reload handles POST /api/v1/integration/{platform}/reload
func (h *IntegrationHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.playerOperation(w, r, h.linkingService.ReconcileNow)
}

// Unlink handles POST /api/v1/integration/{platform}/unlink
func (h *IntegrationHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	h.playerOperation(w, r, h.linkingService.Unlink)
}

// Cancel handles POST /api/v1/integration/{platform}/cancel
func (h *IntegrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.playerOperation(w, r, h.linkingService.Cancel)
}

type playerOperationFunc func(ctx context.Context, playerID model.PlayerID, p model.Platform) error

// playerOperation handles the shared shape of the player-addressed endpoints
func (h *IntegrationHandler) playerOperation(w http.ResponseWriter, r *http.Request, op playerOperationFunc) {
	p, err := platformFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	playerID := model.PlayerID(req.UUID)
	if err := playerID.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := op(r.Context(), playerID, p); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatusOK)
}

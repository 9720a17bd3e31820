package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"secondbrain-backend/internal/service/canvas"
	"secondbrain-backend/pkg/api"
)

// CanvasHandler serves the per-category canvas surface.
type CanvasHandler struct {
	canvas canvas.Service
	logger *zap.Logger
}

// NewCanvasHandler creates a canvas handler.
func NewCanvasHandler(svc canvas.Service, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{canvas: svc, logger: logger}
}

// Open handles GET /canvas/{category}.
func (h *CanvasHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.canvas.OpenCategory(r.Context(), getUserID(r.Context()), chi.URLParam(r, "category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, view)
}

// SaveConnections handles PUT /canvas/{category}, called when the user
// closes the canvas for a category.
func (h *CanvasHandler) SaveConnections(w http.ResponseWriter, r *http.Request) {
	var req api.SaveConnectionsRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.canvas.SaveConnections(r.Context(), getUserID(r.Context()), chi.URLParam(r, "category"), req.Edges)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"secondbrain-backend/internal/service/clip"
	"secondbrain-backend/pkg/api"
)

// ClipHandler accepts web page captures from the browser extension.
type ClipHandler struct {
	clips    clip.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewClipHandler creates a clip handler.
func NewClipHandler(clips clip.Service, validate *validator.Validate, logger *zap.Logger) *ClipHandler {
	return &ClipHandler{clips: clips, validate: validate, logger: logger}
}

// Capture handles POST /clips.
func (h *ClipHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req api.CaptureClipRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.clips.Capture(r.Context(), getUserID(r.Context()), clip.CaptureInput{
		URL:      req.URL,
		HTML:     req.HTML,
		Category: req.Category,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, created)
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"secondbrain-backend/internal/service/search"
	"secondbrain-backend/pkg/api"
)

// SearchHandler serves smart search.
type SearchHandler struct {
	search search.Service
	logger *zap.Logger
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(svc search.Service, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: svc, logger: logger}
}

// Get handles GET /search?q=...&expand=true.
func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	expand := r.URL.Query().Get("expand") == "true"

	results, err := h.search.Search(r.Context(), getUserID(r.Context()), query, expand)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, api.SearchResponse{Query: query, Results: results})
}

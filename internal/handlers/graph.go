package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/graph"
	"secondbrain-backend/internal/graph/layout"
	"secondbrain-backend/internal/repository"
	"secondbrain-backend/internal/service/note"
	"secondbrain-backend/pkg/api"
)

// GraphHandler serves the knowledge-graph view.
type GraphHandler struct {
	notes   note.Service
	builder *graph.Builder
	reveal  layout.RevealSchedule
	logger  *zap.Logger
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(notes note.Service, builder *graph.Builder, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		notes:   notes,
		builder: builder,
		reveal:  layout.DefaultRevealSchedule,
		logger:  logger,
	}
}

// Get handles GET /graph. Creation order drives the reveal sequence, so
// the listing is fetched oldest-first. With settle=true the force solver
// runs to convergence server-side and the response carries settled
// positions instead of the initial circular placement.
func (h *GraphHandler) Get(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotes(r.Context(), getUserID(r.Context()), repository.NoteQuery{
		Sort: repository.SortByCreatedAsc,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	g := h.builder.Build(notes)

	if r.URL.Query().Get("settle") == "true" && len(g.Nodes) > 0 {
		sim := layout.NewSimulator(domain.Position{})
		sim.Load(g)
		for sim.Tick() {
		}
		g.Nodes = sim.Nodes()
	}

	api.Success(w, http.StatusOK, api.GraphResponse{
		Nodes: g.Nodes,
		Edges: g.Edges,
		Reveal: api.RevealTiming{
			PerNodeDelayMs:      h.reveal.PerNodeDelay.Milliseconds(),
			EntranceDurationMs:  h.reveal.EntranceDuration.Milliseconds(),
			EdgesVisibleAfterMs: h.reveal.EdgesVisibleAfter(len(g.Nodes)).Milliseconds(),
		},
	})
}

// Package canvas manages the per-category editing surface: free-form note
// positions and user-drawn connections that persist across sessions.
package canvas

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	"secondbrain-backend/internal/service/note"
	appErrors "secondbrain-backend/pkg/errors"
)

// Fallback circle used for notes that have never been dragged.
const (
	fallbackMinRadius = 300.0
	fallbackPerNote   = 50.0
	fallbackCenterX   = 500.0
	fallbackCenterY   = 300.0
)

// View is everything needed to render one category's canvas.
type View struct {
	Category  string                     `json:"category"`
	Notes     []domain.Note              `json:"notes"`
	Positions map[string]domain.Position `json:"positions"`
	Edges     []domain.CanvasEdge        `json:"edges"`
}

// Service defines the canvas operations.
type Service interface {
	// OpenCategory loads the category's notes, their positions (with a
	// deterministic circular fallback for unplaced notes), and the saved
	// connection list.
	OpenCategory(ctx context.Context, ownerID, category string) (*View, error)

	// SaveConnections persists the category's edge list. An empty list
	// clears the stored reference rather than leaving it stale.
	SaveConnections(ctx context.Context, ownerID, category string, edges []domain.CanvasEdge) error

	// SavePosition writes a dragged note's position through the note
	// facade. The caller keeps its in-memory position either way.
	SavePosition(ctx context.Context, ownerID, noteID string, pos domain.Position) error
}

type service struct {
	notes   note.Service
	layouts repository.LayoutRepository
	blobs   blob.Store
	logger  *zap.Logger
}

// NewService creates a canvas service.
func NewService(notes note.Service, layouts repository.LayoutRepository, blobs blob.Store, logger *zap.Logger) Service {
	return &service{notes: notes, layouts: layouts, blobs: blobs, logger: logger}
}

func (s *service) OpenCategory(ctx context.Context, ownerID, category string) (*View, error) {
	if category == "" {
		return nil, appErrors.NewValidation("category cannot be empty")
	}

	notes, err := s.notes.ListNotes(ctx, ownerID, repository.NoteQuery{Category: category})
	if err != nil {
		return nil, err
	}

	view := &View{
		Category:  category,
		Notes:     notes,
		Positions: fallbackPositions(notes),
		Edges:     s.loadConnections(ctx, ownerID, category),
	}
	return view, nil
}

func (s *service) SaveConnections(ctx context.Context, ownerID, category string, edges []domain.CanvasEdge) error {
	if category == "" {
		return appErrors.NewValidation("category cannot be empty")
	}

	layout := domain.Layout{
		OwnerID:   ownerID,
		Category:  category,
		UpdatedAt: time.Now(),
	}

	if len(edges) > 0 {
		data, err := json.Marshal(edges)
		if err != nil {
			return appErrors.Wrap(err, "failed to serialize connections")
		}
		ref, err := s.blobs.Put(ctx, data, "application/json")
		if err != nil {
			return appErrors.Wrap(err, "failed to store connections")
		}
		layout.ConnectionsRef = ref
	}

	if err := s.layouts.SaveLayout(ctx, layout); err != nil {
		return appErrors.Wrap(err, "failed to save canvas layout")
	}
	return nil
}

func (s *service) SavePosition(ctx context.Context, ownerID, noteID string, pos domain.Position) error {
	return s.notes.SavePosition(ctx, ownerID, noteID, pos)
}

// loadConnections fetches and parses the stored edge list. Any failure
// degrades to an empty list; the canvas must render regardless.
func (s *service) loadConnections(ctx context.Context, ownerID, category string) []domain.CanvasEdge {
	layout, err := s.layouts.FindLayout(ctx, ownerID, category)
	if err != nil {
		s.logger.Error("failed to load canvas layout",
			zap.String("category", category), zap.Error(err))
		return nil
	}
	if layout == nil || layout.ConnectionsRef == "" {
		return nil
	}

	data, err := s.blobs.Get(ctx, layout.ConnectionsRef)
	if err != nil {
		s.logger.Error("failed to fetch canvas connections",
			zap.String("category", category),
			zap.String("ref", layout.ConnectionsRef), zap.Error(err))
		return nil
	}

	var edges []domain.CanvasEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		s.logger.Error("malformed canvas connections blob",
			zap.String("category", category),
			zap.String("ref", layout.ConnectionsRef), zap.Error(err))
		return nil
	}
	return edges
}

// fallbackPositions places every note on a circle; stored positions win
// over the fallback. Placement depends only on note order, so the same
// listing yields the same layout.
func fallbackPositions(notes []domain.Note) map[string]domain.Position {
	positions := make(map[string]domain.Position, len(notes))
	if len(notes) == 0 {
		return positions
	}

	radius := math.Max(fallbackMinRadius, float64(len(notes))*fallbackPerNote)
	slice := 2 * math.Pi / float64(len(notes))
	for i, n := range notes {
		if n.Position != nil && n.Position.IsFinite() {
			positions[n.ID] = *n.Position
			continue
		}
		angle := float64(i) * slice
		positions[n.ID] = domain.Position{
			X: fallbackCenterX + radius*math.Cos(angle),
			Y: fallbackCenterY + radius*math.Sin(angle),
		}
	}
	return positions
}

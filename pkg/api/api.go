// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

import (
	"encoding/json"
	"net/http"

	"secondbrain-backend/internal/domain"
)

// CreateNoteRequest is the expected body for a POST /notes request.
type CreateNoteRequest struct {
	Title    string         `json:"title" validate:"required,min=1,max=200"`
	Category string         `json:"category" validate:"max=100"`
	Content  string         `json:"content"`
	Blocks   []domain.Block `json:"blocks,omitempty"`
}

// UpdateNoteRequest is the expected body for a PUT /notes/{noteId}
// request. Omitted fields are left unchanged.
type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Category *string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	IsPublic *bool     `json:"isPublic,omitempty"`
}

// PositionRequest is the body for PUT /notes/{noteId}/position.
type PositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VisibilityRequest is the body for PUT /notes/{noteId}/visibility.
type VisibilityRequest struct {
	IsPublic bool `json:"isPublic"`
}

// TagsRequest is the body for PUT /notes/{noteId}/tags.
type TagsRequest struct {
	Tags []string `json:"tags" validate:"required"`
}

// SaveConnectionsRequest is the body for PUT /canvas/{category}.
type SaveConnectionsRequest struct {
	Edges []domain.CanvasEdge `json:"edges"`
}

// CaptureClipRequest is the body for POST /clips, sent by the browser
// extension.
type CaptureClipRequest struct {
	URL      string `json:"url" validate:"required,url"`
	HTML     string `json:"html" validate:"required"`
	Category string `json:"category" validate:"max=100"`
}

// SummarizeRequest is the body for POST /ai/summarize.
type SummarizeRequest struct {
	NoteID  string `json:"noteId,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatRequest is the body for POST /ai/chat.
type ChatRequest struct {
	NoteID   string `json:"noteId,omitempty"`
	Question string `json:"question" validate:"required"`
}

// SummarizeResponse carries a generated summary plus suggestions.
type SummarizeResponse struct {
	Summary       string   `json:"summary"`
	Tags          []string `json:"tags,omitempty"`
	RelatedTopics []string `json:"relatedTopics,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// NoteListResponse wraps a note listing.
type NoteListResponse struct {
	Notes []domain.Note `json:"notes"`
}

// RevealTiming tells the client how to stagger node entrances and when
// edges may appear.
type RevealTiming struct {
	PerNodeDelayMs      int64 `json:"perNodeDelayMs"`
	EntranceDurationMs  int64 `json:"entranceDurationMs"`
	EdgesVisibleAfterMs int64 `json:"edgesVisibleAfterMs"`
}

// GraphResponse is the knowledge-graph view payload.
type GraphResponse struct {
	Nodes  []domain.GraphNode `json:"nodes"`
	Edges  []domain.GraphEdge `json:"edges"`
	Reveal RevealTiming       `json:"reveal"`
}

// SearchResponse wraps scored search results.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results interface{} `json:"results"`
}

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success writes a JSON response with the given status code.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// Decode parses a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

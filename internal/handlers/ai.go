package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"secondbrain-backend/internal/service/ai"
	"secondbrain-backend/internal/service/note"
	"secondbrain-backend/pkg/api"
	appErrors "secondbrain-backend/pkg/errors"
)

// AIHandler serves the completion-backed helpers.
type AIHandler struct {
	ai       ai.Service
	notes    note.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAIHandler creates an AI handler.
func NewAIHandler(aiSvc ai.Service, notes note.Service, validate *validator.Validate, logger *zap.Logger) *AIHandler {
	return &AIHandler{ai: aiSvc, notes: notes, validate: validate, logger: logger}
}

// Summarize handles POST /ai/summarize. The request either names a note
// (whose content is resolved first) or carries raw content.
func (h *AIHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req api.SummarizeRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content, err := h.contentFor(r, req.NoteID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ctx := r.Context()
	api.Success(w, http.StatusOK, api.SummarizeResponse{
		Summary:       h.ai.Summarize(ctx, content),
		Tags:          h.ai.GenerateTags(ctx, content),
		RelatedTopics: h.ai.SuggestRelatedTopics(ctx, content),
	})
}

// Chat handles POST /ai/chat. When a note is referenced its resolved
// content becomes the conversation context.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	contextText := ""
	if req.NoteID != "" {
		n, err := h.notes.GetNote(r.Context(), getUserID(r.Context()), req.NoteID, true)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		contextText = n.Content
	}

	api.Success(w, http.StatusOK, api.ChatResponse{
		Reply: h.ai.Chat(r.Context(), contextText, req.Question),
	})
}

// GenerateTags handles POST /notes/{noteId}/tags: it generates tags from
// the note's resolved content and persists them on the note.
func (h *AIHandler) GenerateTags(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteId")
	ownerID := getUserID(r.Context())

	n, err := h.notes.GetNote(r.Context(), ownerID, noteID, true)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tags := h.ai.GenerateTags(r.Context(), n.Content)
	if len(tags) == 0 {
		api.Error(w, http.StatusBadGateway, "tag generation failed")
		return
	}

	updated, err := h.notes.SetTags(r.Context(), ownerID, noteID, tags)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, updated)
}

func (h *AIHandler) contentFor(r *http.Request, noteID, rawContent string) (string, error) {
	if noteID != "" {
		n, err := h.notes.GetNote(r.Context(), getUserID(r.Context()), noteID, true)
		if err != nil {
			return "", err
		}
		return n.Content, nil
	}
	if rawContent == "" {
		return "", appErrors.NewValidation("either noteId or content is required")
	}
	return rawContent, nil
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	"secondbrain-backend/internal/service/note"
	"secondbrain-backend/pkg/api"
)

// NoteHandler serves the note CRUD surface.
type NoteHandler struct {
	notes    note.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewNoteHandler creates a note handler.
func NewNoteHandler(notes note.Service, validate *validator.Validate, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, validate: validate, logger: logger}
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateNoteRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.notes.CreateNote(r.Context(), getUserID(r.Context()), note.CreateInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Blocks:   req.Blocks,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, created)
}

// List handles GET /notes with optional category, title, and public
// filters.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	query := repository.NoteQuery{
		Category:    r.URL.Query().Get("category"),
		TitlePrefix: r.URL.Query().Get("title"),
		PublicOnly:  r.URL.Query().Get("public") == "true",
	}
	if r.URL.Query().Get("order") == "created" {
		query.Sort = repository.SortByCreatedAsc
	}

	notes, err := h.notes.ListNotes(r.Context(), getUserID(r.Context()), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, api.NoteListResponse{Notes: notes})
}

// Get handles GET /notes/{noteId}. The resolve query parameter loads
// offloaded content before returning.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	resolve := r.URL.Query().Get("resolve") != "false"
	n, err := h.notes.GetNote(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId"), resolve)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, n)
}

// Update handles PUT /notes/{noteId}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateNoteRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.notes.UpdateNote(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId"), note.UpdateInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, updated)
}

// Delete handles DELETE /notes/{noteId}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteNote(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId")); err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// SavePosition handles PUT /notes/{noteId}/position.
func (h *NoteHandler) SavePosition(w http.ResponseWriter, r *http.Request) {
	var req api.PositionRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.notes.SavePosition(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId"),
		domain.Position{X: req.X, Y: req.Y})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// SetVisibility handles PUT /notes/{noteId}/visibility.
func (h *NoteHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req api.VisibilityRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.notes.SetVisibility(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId"), req.IsPublic)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, updated)
}

// SetTags handles PUT /notes/{noteId}/tags.
func (h *NoteHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	var req api.TagsRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.notes.SetTags(r.Context(), getUserID(r.Context()), chi.URLParam(r, "noteId"), req.Tags)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.Success(w, http.StatusOK, updated)
}

// Package repository defines the persistence interfaces for notes and
// canvas layouts, independent of the backing document store.
package repository

import (
	"context"

	"secondbrain-backend/internal/domain"
)

// SortOrder selects the ordering of listed notes.
type SortOrder string

const (
	// SortByUpdatedDesc orders by most recently updated first. This is the
	// default for listings.
	SortByUpdatedDesc SortOrder = "updated_desc"
	// SortByCreatedAsc orders by creation time, oldest first. The graph
	// view depends on this ordering for reveal sequencing.
	SortByCreatedAsc SortOrder = "created_asc"
)

// NoteQuery filters and orders a note listing. Zero values mean "no
// filter".
type NoteQuery struct {
	// Category filters by exact category label.
	Category string
	// TitlePrefix matches titles beginning with the given string.
	TitlePrefix string
	// PublicOnly restricts results to publicly visible notes.
	PublicOnly bool
	// Sort selects the result ordering; defaults to SortByUpdatedDesc.
	Sort SortOrder
}

// NoteRepository is the document-store contract for note records.
// Find operations return (nil, nil) when no record exists; callers decide
// how absence surfaces.
type NoteRepository interface {
	CreateNote(ctx context.Context, note domain.Note) error
	FindNoteByID(ctx context.Context, ownerID, noteID string) (*domain.Note, error)
	UpdateNote(ctx context.Context, note domain.Note) error
	DeleteNote(ctx context.Context, ownerID, noteID string) error
	ListNotes(ctx context.Context, ownerID string, query NoteQuery) ([]domain.Note, error)
}

// LayoutRepository persists the per-category canvas layout records.
type LayoutRepository interface {
	SaveLayout(ctx context.Context, layout domain.Layout) error
	FindLayout(ctx context.Context, ownerID, category string) (*domain.Layout, error)
}

// Repository combines the note and layout stores; the DynamoDB
// implementation backs both from a single table.
type Repository interface {
	NoteRepository
	LayoutRepository
}

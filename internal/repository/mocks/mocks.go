// Package mocks provides in-memory implementations of the repository
// interfaces for testing services without a real database.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
)

// MockRepository is an in-memory Repository.
type MockRepository struct {
	mu sync.RWMutex

	notes   map[string]*domain.Note   // ownerID/noteID -> note
	layouts map[string]*domain.Layout // ownerID/category -> layout

	// For testing error scenarios
	shouldFailOn map[string]error
}

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		notes:        make(map[string]*domain.Note),
		layouts:      make(map[string]*domain.Layout),
		shouldFailOn: make(map[string]error),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

func (m *MockRepository) checkError(method string) error {
	if err, exists := m.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func noteKey(ownerID, noteID string) string {
	return ownerID + "/" + noteID
}

func layoutKey(ownerID, category string) string {
	return ownerID + "/" + category
}

// CreateNote stores a copy of the note.
func (m *MockRepository) CreateNote(ctx context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("CreateNote"); err != nil {
		return err
	}
	copied := note
	m.notes[noteKey(note.OwnerID, note.ID)] = &copied
	return nil
}

// FindNoteByID returns a copy of the stored note, or (nil, nil) when absent.
func (m *MockRepository) FindNoteByID(ctx context.Context, ownerID, noteID string) (*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("FindNoteByID"); err != nil {
		return nil, err
	}
	note, ok := m.notes[noteKey(ownerID, noteID)]
	if !ok {
		return nil, nil
	}
	copied := *note
	return &copied, nil
}

// UpdateNote replaces the stored note.
func (m *MockRepository) UpdateNote(ctx context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("UpdateNote"); err != nil {
		return err
	}
	copied := note
	m.notes[noteKey(note.OwnerID, note.ID)] = &copied
	return nil
}

// DeleteNote removes the stored note.
func (m *MockRepository) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("DeleteNote"); err != nil {
		return err
	}
	delete(m.notes, noteKey(ownerID, noteID))
	return nil
}

// ListNotes filters and orders the owner's notes like the real store.
func (m *MockRepository) ListNotes(ctx context.Context, ownerID string, query repository.NoteQuery) ([]domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("ListNotes"); err != nil {
		return nil, err
	}

	var notes []domain.Note
	for _, note := range m.notes {
		if note.OwnerID != ownerID {
			continue
		}
		if query.Category != "" && note.Category != query.Category {
			continue
		}
		if query.TitlePrefix != "" && !strings.HasPrefix(note.Title, query.TitlePrefix) {
			continue
		}
		if query.PublicOnly && !note.IsPublic {
			continue
		}
		notes = append(notes, *note)
	}

	if query.Sort == repository.SortByCreatedAsc {
		sort.Slice(notes, func(i, j int) bool {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		})
	} else {
		sort.Slice(notes, func(i, j int) bool {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		})
	}
	return notes, nil
}

// SaveLayout stores a copy of the layout record.
func (m *MockRepository) SaveLayout(ctx context.Context, layout domain.Layout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("SaveLayout"); err != nil {
		return err
	}
	copied := layout
	m.layouts[layoutKey(layout.OwnerID, layout.Category)] = &copied
	return nil
}

// FindLayout returns a copy of the layout record, or (nil, nil) when absent.
func (m *MockRepository) FindLayout(ctx context.Context, ownerID, category string) (*domain.Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("FindLayout"); err != nil {
		return nil, err
	}
	layout, ok := m.layouts[layoutKey(ownerID, category)]
	if !ok {
		return nil, nil
	}
	copied := *layout
	return &copied, nil
}

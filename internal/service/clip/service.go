package clip

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/service/note"
	appErrors "secondbrain-backend/pkg/errors"
)

// CaptureInput is one page capture submitted by the browser extension.
type CaptureInput struct {
	URL      string
	HTML     string
	Category string
}

// Service turns captured pages into notes.
type Service interface {
	Capture(ctx context.Context, ownerID string, input CaptureInput) (*domain.Note, error)
}

type service struct {
	notes  note.Service
	logger *zap.Logger
}

// NewService creates a clip service on top of the note facade.
func NewService(notes note.Service, logger *zap.Logger) Service {
	return &service{notes: notes, logger: logger}
}

func (s *service) Capture(ctx context.Context, ownerID string, input CaptureInput) (*domain.Note, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, appErrors.NewValidation("url cannot be empty")
	}
	if strings.TrimSpace(input.HTML) == "" {
		return nil, appErrors.NewValidation("html cannot be empty")
	}

	page, err := Extract(input.HTML, input.URL)
	if err != nil {
		return nil, err
	}

	title := page.Title
	if title == "" {
		title = input.URL
	}
	meta := page.Metadata
	meta.Description = Truncate(meta.Description, truncateLimit)

	created, err := s.notes.CreateNote(ctx, ownerID, note.CreateInput{
		Title:    title,
		Category: input.Category,
		Content:  page.Content,
		Source:   &meta,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("captured web clip",
		zap.String("noteId", created.ID),
		zap.String("url", input.URL))
	return created, nil
}

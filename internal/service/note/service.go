// Package note provides the business logic for note management. It is the
// single choke point for reading and writing note records and owns the
// chunking policy that keeps content under the document store's field
// ceiling.
package note

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/cache"
	"secondbrain-backend/internal/chunk"
	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	appErrors "secondbrain-backend/pkg/errors"
)

// resolveConcurrency bounds how many blob fetches run at once while
// resolving a note's blocks.
const resolveConcurrency = 4

// listCacheTTL is how long a full note listing stays cached.
const listCacheTTL = 30 * time.Second

// CreateInput holds the fields for a new note.
type CreateInput struct {
	Title    string
	Category string
	Content  string
	Blocks   []domain.Block
	Source   *domain.SourceMetadata
}

// UpdateInput holds a partial update. Nil fields are left untouched;
// unspecified fields are never overwritten with empty values.
type UpdateInput struct {
	Title    *string
	Category *string
	Content  *string
	Tags     *[]string
	IsPublic *bool
}

// Service defines the note management operations.
type Service interface {
	// CreateNote stores a new private note, offloading oversized content.
	CreateNote(ctx context.Context, ownerID string, input CreateInput) (*domain.Note, error)

	// UpdateNote merges the provided fields into an existing note.
	UpdateNote(ctx context.Context, ownerID, noteID string, input UpdateInput) (*domain.Note, error)

	// GetNote retrieves a note, optionally resolving offloaded content.
	GetNote(ctx context.Context, ownerID, noteID string, resolve bool) (*domain.Note, error)

	// ListNotes returns the owner's notes matching the query.
	ListNotes(ctx context.Context, ownerID string, query repository.NoteQuery) ([]domain.Note, error)

	// DeleteNote removes a note. Referenced blobs are left in place.
	DeleteNote(ctx context.Context, ownerID, noteID string) error

	// ResolveContent returns a copy of the note with every offloaded block
	// loaded. Resolving an already-resolved note is a no-op.
	ResolveContent(ctx context.Context, n *domain.Note) (*domain.Note, error)

	// SetVisibility toggles public/private, re-running the chunking policy
	// over the fully resolved content.
	SetVisibility(ctx context.Context, ownerID, noteID string, public bool) (*domain.Note, error)

	// SavePosition persists a canvas position for the note.
	SavePosition(ctx context.Context, ownerID, noteID string, pos domain.Position) error

	// SetTags replaces the note's tag list.
	SetTags(ctx context.Context, ownerID, noteID string, tags []string) (*domain.Note, error)
}

type service struct {
	repo   repository.NoteRepository
	codec  *chunk.Codec
	blobs  blob.Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewService creates a note service. The cache may be nil, in which case
// listings always hit the repository.
func NewService(repo repository.NoteRepository, codec *chunk.Codec, blobs blob.Store, c cache.Cache, logger *zap.Logger) Service {
	return &service{repo: repo, codec: codec, blobs: blobs, cache: c, logger: logger}
}

func (s *service) CreateNote(ctx context.Context, ownerID string, input CreateInput) (*domain.Note, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErrors.NewValidation("title cannot be empty")
	}

	now := time.Now()
	n := domain.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     input.Title,
		Category:  input.Category,
		Source:    input.Source,
		IsPublic:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.applyChunkPolicy(ctx, &n, input.Content); err != nil {
		return nil, err
	}
	// Editor-supplied blocks win over the derived single paragraph, but
	// never over an offloaded sentinel block.
	if len(input.Blocks) > 0 && n.Content != chunk.Sentinel {
		n.Blocks = s.encodeBlocks(input.Blocks)
	}

	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, "failed to create note")
	}
	s.invalidateListing(ctx, ownerID)
	return &n, nil
}

func (s *service) UpdateNote(ctx context.Context, ownerID, noteID string, input UpdateInput) (*domain.Note, error) {
	n, err := s.mustFind(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, appErrors.NewValidation("title cannot be empty")
		}
		n.Title = *input.Title
	}
	if input.Category != nil {
		n.Category = *input.Category
	}
	if input.Tags != nil {
		n.Tags = *input.Tags
	}
	if input.IsPublic != nil {
		n.IsPublic = *input.IsPublic
	}
	if input.Content != nil {
		if err := s.applyChunkPolicy(ctx, n, *input.Content); err != nil {
			return nil, err
		}
	}
	n.UpdatedAt = time.Now()

	if err := s.repo.UpdateNote(ctx, *n); err != nil {
		return nil, appErrors.Wrap(err, "failed to update note")
	}
	s.invalidateListing(ctx, ownerID)
	return n, nil
}

func (s *service) GetNote(ctx context.Context, ownerID, noteID string, resolve bool) (*domain.Note, error) {
	n, err := s.mustFind(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	// Clients can fetch offloaded content directly instead of asking the
	// server to resolve it.
	if id := n.OffloadedFileID(); id != "" {
		n.ContentURL = s.blobs.PreviewURL(id)
	}
	if resolve {
		return s.ResolveContent(ctx, n)
	}
	return n, nil
}

func (s *service) ListNotes(ctx context.Context, ownerID string, query repository.NoteQuery) ([]domain.Note, error) {
	cacheable := s.cache != nil && query == repository.NoteQuery{}
	key := "notes:" + ownerID

	if cacheable {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var notes []domain.Note
			if err := json.Unmarshal(data, &notes); err == nil {
				return notes, nil
			}
		}
	}

	notes, err := s.repo.ListNotes(ctx, ownerID, query)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list notes")
	}

	if cacheable {
		if data, err := json.Marshal(notes); err == nil {
			if err := s.cache.Set(ctx, key, data, listCacheTTL); err != nil {
				s.logger.Warn("failed to cache note listing", zap.Error(err))
			}
		}
	}
	return notes, nil
}

func (s *service) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	if _, err := s.mustFind(ctx, ownerID, noteID); err != nil {
		return err
	}
	// Blobs referenced by the note are intentionally left behind; see the
	// orphaned-blob policy decision in DESIGN.md.
	if err := s.repo.DeleteNote(ctx, ownerID, noteID); err != nil {
		return appErrors.Wrap(err, "failed to delete note")
	}
	s.invalidateListing(ctx, ownerID)
	return nil
}

func (s *service) ResolveContent(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	resolved := *n
	if len(n.Blocks) > 0 {
		blocks := make([]domain.Block, len(n.Blocks))
		copy(blocks, n.Blocks)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(resolveConcurrency)
		for i := range blocks {
			if !blocks[i].NeedsResolve(chunk.Sentinel) {
				continue
			}
			i := i
			g.Go(func() error {
				blocks[i].Content = s.codec.Decode(gctx, blocks[i])
				blocks[i].Props.LoadedFromFile = true
				return nil
			})
		}
		// Decode never fails; the group exists only to bound concurrency.
		_ = g.Wait()
		resolved.Blocks = blocks
	}

	if resolved.Content == chunk.Sentinel {
		var parts []string
		for _, b := range resolved.Blocks {
			if b.Type == domain.BlockTypeParagraph && b.Content != chunk.Sentinel && b.Content != "" {
				parts = append(parts, b.Content)
			}
		}
		resolved.Content = strings.Join(parts, "\n\n")
	}
	return &resolved, nil
}

func (s *service) SetVisibility(ctx context.Context, ownerID, noteID string, public bool) (*domain.Note, error) {
	n, err := s.mustFind(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	// Re-run the chunking policy over the full content so a visibility
	// change never leaves a note with stale block references.
	resolved, err := s.ResolveContent(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := s.applyChunkPolicy(ctx, resolved, resolved.Content); err != nil {
		return nil, err
	}
	resolved.IsPublic = public
	resolved.UpdatedAt = time.Now()

	if err := s.repo.UpdateNote(ctx, *resolved); err != nil {
		return nil, appErrors.Wrap(err, "failed to update note visibility")
	}
	s.invalidateListing(ctx, ownerID)
	return resolved, nil
}

func (s *service) SavePosition(ctx context.Context, ownerID, noteID string, pos domain.Position) error {
	if !pos.IsFinite() {
		return appErrors.NewValidation("position coordinates must be finite")
	}
	n, err := s.mustFind(ctx, ownerID, noteID)
	if err != nil {
		return err
	}
	n.Position = &pos
	n.UpdatedAt = time.Now()
	if err := s.repo.UpdateNote(ctx, *n); err != nil {
		return appErrors.Wrap(err, "failed to save note position")
	}
	s.invalidateListing(ctx, ownerID)
	return nil
}

func (s *service) SetTags(ctx context.Context, ownerID, noteID string, tags []string) (*domain.Note, error) {
	n, err := s.mustFind(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	n.Tags = tags
	n.UpdatedAt = time.Now()
	if err := s.repo.UpdateNote(ctx, *n); err != nil {
		return nil, appErrors.Wrap(err, "failed to save note tags")
	}
	s.invalidateListing(ctx, ownerID)
	return n, nil
}

// applyChunkPolicy writes content into the note, offloading it to the blob
// store when it exceeds the ceiling. The block list always reflects where
// the content actually lives.
func (s *service) applyChunkPolicy(ctx context.Context, n *domain.Note, content string) error {
	inline, blobNeeded := s.codec.Encode(content)
	if !blobNeeded {
		n.Content = inline
		n.Blocks = nil
		if content != "" {
			n.Blocks = []domain.Block{{Type: domain.BlockTypeParagraph, Content: content}}
		}
		return nil
	}

	fileID, err := s.blobs.Put(ctx, []byte(content), "text/plain")
	if err != nil {
		return appErrors.Wrap(err, "failed to offload note content")
	}
	n.Content = inline
	n.Blocks = []domain.Block{{
		Type:    domain.BlockTypeParagraph,
		Content: chunk.Sentinel,
		Props:   domain.BlockProps{FileID: fileID},
	}}
	return nil
}

// encodeBlocks enforces the field ceiling on caller-supplied blocks. A
// paragraph too large to store inline is split into ceiling-sized chunks,
// one block per chunk, so no persisted field ever exceeds the ceiling.
func (s *service) encodeBlocks(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Type != domain.BlockTypeParagraph {
			out = append(out, b)
			continue
		}
		if _, oversized := s.codec.Encode(b.Content); !oversized {
			out = append(out, b)
			continue
		}
		for _, part := range s.codec.Split(b.Content) {
			out = append(out, domain.Block{Type: domain.BlockTypeParagraph, Content: part})
		}
	}
	return out
}

// mustFind fetches a note, mapping absence to NotFound. A private note
// owned by someone else is indistinguishable from a missing one.
func (s *service) mustFind(ctx context.Context, ownerID, noteID string) (*domain.Note, error) {
	n, err := s.repo.FindNoteByID(ctx, ownerID, noteID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to find note")
	}
	if n == nil {
		return nil, appErrors.NewNotFound("note not found")
	}
	return n, nil
}

func (s *service) invalidateListing(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "notes:"+ownerID); err != nil {
		s.logger.Warn("failed to invalidate note listing cache", zap.Error(err))
	}
}
